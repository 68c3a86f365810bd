package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
)

func TestProfileFilterValidate(t *testing.T) {
	assert.NoError(t, (&ProfileFilter{}).Validate())
	assert.NoError(t, (&ProfileFilter{Gender: entity.GenderMale, Sleep: entity.SleepEarlyBird, Country: "US"}).Validate())
	assert.ErrorIs(t, (&ProfileFilter{Gender: "male"}).Validate(), entity.ErrInvalidChoice)
	assert.ErrorIs(t, (&ProfileFilter{Neat: "Spotless"}).Validate(), entity.ErrInvalidChoice)
	assert.ErrorIs(t, (&ProfileFilter{Country: "USA"}).Validate(), entity.ErrInvalidChoice)

	f := &ProfileFilter{Country: " in "}
	f.Normalize()
	assert.Equal(t, "IN", f.Country)
	assert.NoError(t, f.Validate())
}

func TestProfileFilterMatches(t *testing.T) {
	yes, no := true, false
	p := &entity.Profile{UserID: "u1", Gender: entity.GenderMale, Diet: entity.DietVeg, Country: "IN", HaveProperty: true, Visibility: true}

	assert.True(t, ProfileFilter{}.Matches(p))
	assert.True(t, ProfileFilter{Gender: entity.GenderMale}.Matches(p))
	assert.False(t, ProfileFilter{Gender: entity.GenderFemale}.Matches(p))
	assert.True(t, ProfileFilter{Gender: entity.GenderMale, Diet: entity.DietVeg, Country: "IN"}.Matches(p))
	assert.False(t, ProfileFilter{Gender: entity.GenderMale, Diet: entity.DietNonVeg}.Matches(p))
	assert.True(t, ProfileFilter{HaveProperty: &yes}.Matches(p))
	assert.False(t, ProfileFilter{HaveProperty: &no}.Matches(p))
	assert.False(t, ProfileFilter{ExcludeUserID: "u1"}.Matches(p))

	p.Visibility = false
	assert.True(t, ProfileFilter{}.Matches(p))
	assert.False(t, ProfileFilter{VisibleOnly: true}.Matches(p))
}

func TestPage(t *testing.T) {
	cases := []struct {
		limit, offset    int
		wantLim, wantOff int
	}{
		{0, 0, DefaultPageSize, 0},
		{-3, -1, DefaultPageSize, 0},
		{10, 5, 10, 5},
		{1000, 0, MaxPageSize, 0},
	}
	for _, tc := range cases {
		l, o := ProfileFilter{Limit: tc.limit, Offset: tc.offset}.Page()
		assert.Equal(t, tc.wantLim, l)
		assert.Equal(t, tc.wantOff, o)
		l, o = PostFilter{Limit: tc.limit, Offset: tc.offset}.Page()
		assert.Equal(t, tc.wantLim, l)
		assert.Equal(t, tc.wantOff, o)
	}
}
