package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	repo "github.com/oksasatya/roommate-finder/internal/domain/repository"
)

// ProfileIndexMapping keeps the enumerated fields as keywords so term filters match exactly.
const ProfileIndexMapping = `{
  "mappings": {
    "properties": {
      "user_id":       {"type": "keyword"},
      "profile_id":    {"type": "keyword"},
      "name":          {"type": "text"},
      "bio":           {"type": "text"},
      "hometown":      {"type": "text"},
      "gender":        {"type": "keyword"},
      "degree":        {"type": "keyword"},
      "course":        {"type": "keyword"},
      "diet":          {"type": "keyword"},
      "sleep":         {"type": "keyword"},
      "neat":          {"type": "keyword"},
      "study":         {"type": "keyword"},
      "drug":          {"type": "keyword"},
      "country":       {"type": "keyword"},
      "have_property": {"type": "boolean"},
      "visibility":    {"type": "boolean"},
      "updated_at":    {"type": "date"}
    }
  }
}`

func profileDocument(p *entity.Profile) map[string]any {
	return map[string]any{
		"user_id":       p.UserID,
		"profile_id":    p.ID,
		"name":          p.Name,
		"bio":           p.Bio,
		"hometown":      p.Hometown,
		"gender":        p.Gender,
		"degree":        p.Degree,
		"course":        p.Course,
		"diet":          p.Diet,
		"sleep":         p.Sleep,
		"neat":          p.Neat,
		"study":         p.Study,
		"drug":          p.Drug,
		"country":       p.Country,
		"have_property": p.HaveProperty,
		"visibility":    p.Visibility,
		"updated_at":    p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (s *ProfileService) searchEnabled() bool {
	return s.ES != nil && s.ESIndex != ""
}

// reindex is best effort; Postgres stays the source of truth.
func (s *ProfileService) reindex(ctx context.Context, p *entity.Profile) {
	if !s.searchEnabled() {
		return
	}
	b, _ := json.Marshal(profileDocument(p))
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.UserID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.warn(err, "es index failed", logrus.Fields{"user_id": p.UserID})
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", p.UserID).Warn("es index response error")
	}
}

func (s *ProfileService) deleteFromIndex(ctx context.Context, userID string) error {
	if !s.searchEnabled() {
		return nil
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: userID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// buildSearchQuery turns free text plus the equality filter into an ES bool query.
func buildSearchQuery(q string, f repo.ProfileFilter) map[string]any {
	filters := []map[string]any{}
	term := func(field string, v any) {
		filters = append(filters, map[string]any{"term": map[string]any{field: v}})
	}
	for _, kv := range []struct{ field, value string }{
		{"gender", f.Gender}, {"degree", f.Degree}, {"course", f.Course}, {"diet", f.Diet},
		{"sleep", f.Sleep}, {"neat", f.Neat}, {"study", f.Study}, {"drug", f.Drug},
		{"country", f.Country},
	} {
		if kv.value != "" {
			term(kv.field, kv.value)
		}
	}
	if f.HaveProperty != nil {
		term("have_property", *f.HaveProperty)
	}
	if f.VisibleOnly {
		term("visibility", true)
	}

	boolQ := map[string]any{"filter": filters}
	if strings.TrimSpace(q) != "" {
		boolQ["must"] = []map[string]any{{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "hometown", "bio"},
			},
		}}
	}
	if f.ExcludeUserID != "" {
		boolQ["must_not"] = []map[string]any{{"term": map[string]any{"user_id": f.ExcludeUserID}}}
	}
	limit, offset := f.Page()
	return map[string]any{
		"query":   map[string]any{"bool": boolQ},
		"from":    offset,
		"size":    limit,
		"_source": []string{"user_id"},
	}
}

// FullTextSearch ranks profiles by relevance of q against name, hometown and bio.
// Hits are hydrated from Postgres and re-checked against f so stale index
// entries never leak hidden or changed profiles.
func (s *ProfileService) FullTextSearch(ctx context.Context, q string, f repo.ProfileFilter) ([]*entity.Profile, error) {
	f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if !s.searchEnabled() {
		return nil, fmt.Errorf("%w: search index not configured", ErrUnavailable)
	}
	b, _ := json.Marshal(buildSearchQuery(q, f))

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	profiles, err := s.Profiles.ListByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byUser := make(map[string]*entity.Profile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}

	out := make([]*entity.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byUser[id]; ok && f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
