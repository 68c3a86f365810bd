package router

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/roommate-finder/internal/application"
	"github.com/oksasatya/roommate-finder/internal/container"
	repo "github.com/oksasatya/roommate-finder/internal/domain/repository"
	pginfra "github.com/oksasatya/roommate-finder/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/roommate-finder/internal/interface/http"
	"github.com/oksasatya/roommate-finder/internal/router/modules"
	"github.com/oksasatya/roommate-finder/pkg/helpers"
	tpl "github.com/oksasatya/roommate-finder/pkg/mailer/templates"
)

// Repos groups the persistence ports the services are built on.
type Repos struct {
	Users    repo.UserRepository
	Profiles repo.ProfileRepository
	Posts    repo.ForumPostRepository
	Tx       repo.TxManager
}

func PostgresRepos(pool *pgxpool.Pool) Repos {
	return Repos{
		Users:    pginfra.NewUserRepository(pool),
		Profiles: pginfra.NewProfileRepository(pool),
		Posts:    pginfra.NewForumPostRepository(pool),
		Tx:       pginfra.NewTxManager(pool),
	}
}

type Services struct {
	Accounts *application.AccountService
	Profiles *application.ProfileService
	Forum    *application.ForumService
	Verify   *application.VerificationService
}

// BuildServices wires the application layer from the container singletons.
// Profile provisioning runs inside the user transaction; cache, index and
// email side effects run after commit.
func BuildServices(repos Repos) *Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()

	accounts := application.NewAccountService(repos.Users, repos.Tx, container.GetJWT(), rdb, logger, cfg.AllowedEmailDomain)
	var photos application.PhotoStore
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		photos = helpers.NewGCSBucket(gcs, cfg.GCSBucket)
	}
	profiles := application.NewProfileService(
		repos.Profiles,
		repos.Users,
		repos.Tx,
		rdb,
		cfg.ProfileCacheTTL,
		photos,
		container.GetES(),
		cfg.ESProfilesIndex,
		logger,
	)

	var pub application.JobPublisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}
	verify := application.NewVerificationService(accounts, profiles, rdb, pub, logger, tpl.SenderFromConfig(cfg), cfg.VerifyEmailURL, cfg.MailSendEnabled)

	accounts.Observe(application.NewProfileProvisioner(repos.Profiles, cfg.DefaultProfilePhoto))
	accounts.ObserveCommitted(profiles)
	accounts.ObserveCommitted(verify)

	return &Services{
		Accounts: accounts,
		Profiles: profiles,
		Forum:    application.NewForumService(repos.Posts),
		Verify:   verify,
	}
}

// InitModules wires every module against Postgres and registers it.
func InitModules(r *Registry) *Services {
	return InitModulesWith(r, PostgresRepos(container.GetPGPool()))
}

// InitModulesWith registers all modules on top of the given repositories.
func InitModulesWith(r *Registry, repos Repos) *Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()
	svc := BuildServices(repos)

	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Accounts, logger, cfg.CookieDomain, cfg.CookieSecure), jwt))
	r.Add(modules.NewProfileModule(handlers.NewProfileHandler(svc.Profiles, logger), jwt))
	r.Add(modules.NewForumModule(handlers.NewForumHandler(svc.Forum, logger), jwt))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Verify, logger), jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
	return svc
}

var _ application.PhotoStore = (*helpers.GCSBucket)(nil)
