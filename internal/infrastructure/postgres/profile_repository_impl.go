package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	"github.com/oksasatya/roommate-finder/internal/domain/repository"
)

const profileColumns = `id, user_id, name, bio, birth_date, hometown,
	gender, degree, diet, course, country, sleep, neat, study, drug,
	visibility, is_profile_complete, profile_photo, email_confirmed,
	have_property, city, general_location_details, number_of_rooms, rent_per_person,
	preference_gender, preference_degree, preference_diet, preference_course, preference_country,
	created_at, updated_at`

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	p := &entity.Profile{}
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Bio, &p.BirthDate, &p.Hometown,
		&p.Gender, &p.Degree, &p.Diet, &p.Course, &p.Country, &p.Sleep, &p.Neat, &p.Study, &p.Drug,
		&p.Visibility, &p.IsProfileComplete, &p.ProfilePhoto, &p.EmailConfirmed,
		&p.HaveProperty, &p.City, &p.GeneralLocationDetails, &p.NumberOfRooms, &p.RentPerPerson,
		&p.PreferenceGender, &p.PreferenceDegree, &p.PreferenceDiet, &p.PreferenceCourse, &p.PreferenceCountry,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func collectProfiles(rows pgx.Rows) ([]*entity.Profile, error) {
	defer rows.Close()
	out := []*entity.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO profiles (user_id, name, bio, birth_date, hometown,
			gender, degree, diet, course, country, sleep, neat, study, drug,
			visibility, is_profile_complete, profile_photo, email_confirmed,
			have_property, city, general_location_details, number_of_rooms, rent_per_person,
			preference_gender, preference_degree, preference_diet, preference_course, preference_country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Name, p.Bio, p.BirthDate, p.Hometown,
		p.Gender, p.Degree, p.Diet, p.Course, p.Country, p.Sleep, p.Neat, p.Study, p.Drug,
		p.Visibility, p.IsProfileComplete, p.ProfilePhoto, p.EmailConfirmed,
		p.HaveProperty, p.City, p.GeneralLocationDetails, p.NumberOfRooms, p.RentPerPerson,
		p.PreferenceGender, p.PreferenceDegree, p.PreferenceDiet, p.PreferenceCourse, p.PreferenceCountry)

	return mapErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return scanProfile(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	return scanProfile(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

func (r *ProfileRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*entity.Profile, error) {
	return scanProfile(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 FOR UPDATE`, userID))
}

func (r *ProfileRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]*entity.Profile, error) {
	if len(userIDs) == 0 {
		return []*entity.Profile{}, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ANY($1::uuid[])`, userIDs)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectProfiles(rows)
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	p.UpdatedAt = time.Now()

	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE profiles SET
			name = $1, bio = $2, birth_date = $3, hometown = $4,
			gender = $5, degree = $6, diet = $7, course = $8, country = $9,
			sleep = $10, neat = $11, study = $12, drug = $13,
			visibility = $14, is_profile_complete = $15, profile_photo = $16, email_confirmed = $17,
			have_property = $18, city = $19, general_location_details = $20,
			number_of_rooms = $21, rent_per_person = $22,
			preference_gender = $23, preference_degree = $24, preference_diet = $25,
			preference_course = $26, preference_country = $27,
			updated_at = $28
		WHERE id = $29
	`, p.Name, p.Bio, p.BirthDate, p.Hometown,
		p.Gender, p.Degree, p.Diet, p.Course, p.Country,
		p.Sleep, p.Neat, p.Study, p.Drug,
		p.Visibility, p.IsProfileComplete, p.ProfilePhoto, p.EmailConfirmed,
		p.HaveProperty, p.City, p.GeneralLocationDetails,
		p.NumberOfRooms, p.RentPerPerson,
		p.PreferenceGender, p.PreferenceDegree, p.PreferenceDiet,
		p.PreferenceCourse, p.PreferenceCountry,
		p.UpdatedAt, p.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) Touch(ctx context.Context, userID string) error {
	res, err := conn(ctx, r.pool).Exec(ctx, `UPDATE profiles SET updated_at = now() WHERE user_id = $1`, userID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) Search(ctx context.Context, f repository.ProfileFilter) ([]*entity.Profile, error) {
	sql, args := buildProfileQuery(f)
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectProfiles(rows)
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
