package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/roommate-finder/config"
	"github.com/oksasatya/roommate-finder/internal/application"
	"github.com/oksasatya/roommate-finder/internal/container"
	"github.com/oksasatya/roommate-finder/internal/domain/entity"
	pginfra "github.com/oksasatya/roommate-finder/internal/infrastructure/postgres"
	"github.com/oksasatya/roommate-finder/internal/router"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
)

// seed creates a demo account through the normal save path, so its profile is
// provisioned the same way as for a real signup, plus one forum post.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	cfg.MailSendEnabled = false
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))
	svc := router.BuildServices(router.PostgresRepos(pool))

	email := getenv("SEED_EMAIL", "demo@"+cfg.AllowedEmailDomain)
	password := getenv("SEED_PASSWORD", "password123")

	u, err := svc.Accounts.Register(ctx, application.RegisterInput{Email: email, Password: password, FirstName: "Demo", LastName: "Student"})
	switch {
	case errors.Is(err, application.ErrEmailTaken):
		u, err = svc.Accounts.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
		if err != nil {
			log.Fatalf("failed to load existing user: %v", err)
		}
		// re-save restores a missing profile
		if err := svc.Accounts.Save(ctx, u); err != nil {
			log.Fatalf("failed to re-save user: %v", err)
		}
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	}
	logger.WithField("user_id", u.ID).WithField("email", u.Email).Info("seeded user")

	name, gender, course := "Demo Student", entity.GenderOther, entity.CourseCS
	if _, err := svc.Profiles.Update(ctx, u.ID, application.UpdateProfileInput{Name: &name, Gender: &gender, Course: &course}); err != nil {
		log.Fatalf("failed to update profile: %v", err)
	}

	post := &entity.ForumPost{UserID: u.ID, Title: "Looking for a roommate", Content: "Two bedroom near Centennial Campus, available in August."}
	if err := svc.Forum.Create(ctx, post); err != nil {
		log.Fatalf("failed to seed post: %v", err)
	}
	logger.WithField("post_id", post.ID).Info("seeded forum post")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
