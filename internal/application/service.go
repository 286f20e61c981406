package application

import (
	"log/slog"
	"time"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/ports"
)

// Config carries the application-level settings resolved at bootstrap.
type Config struct {
	// ServerBaseURL is the public address of this service; the callback URL
	// handed to the document server is derived from it.
	ServerBaseURL string
	// CallbackPath is the route the document server posts notifications to.
	CallbackPath string
	// ProxyAddress is the public address of the file-serving proxy.
	ProxyAddress string
	// MaxFileSize is the upper bound for documents opened in the editor.
	MaxFileSize int64
	// ProxySecretTTL bounds the lifetime of issued proxy secrets.
	ProxySecretTTL time.Duration
}

// Service implements the editor-open and callback use-cases.
type Service struct {
	cfg       Config
	appSealer ports.Sealer
	signer    ports.ConfigSigner
	cache     ports.DocumentKeyStore
	cards     ports.CardService
	events    ports.EventPublisher
	registry  *Registry
	issuer    *ProxySecretIssuer
	logger    *slog.Logger
	nowFn     func() time.Time
}

type Dependencies struct {
	Config      Config
	AppSealer   ports.Sealer
	ProxySealer ports.Sealer
	Signer      ports.ConfigSigner
	Cache       ports.DocumentKeyStore
	Cards       ports.CardService
	Events      ports.EventPublisher
	Registry    *Registry
	Logger      *slog.Logger
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = 10 << 20
	}
	if cfg.ProxySecretTTL == 0 {
		cfg.ProxySecretTTL = 80 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		appSealer: deps.AppSealer,
		signer:    deps.Signer,
		cache:     deps.Cache,
		cards:     deps.Cards,
		events:    deps.Events,
		registry:  deps.Registry,
		issuer: &ProxySecretIssuer{
			sealer: deps.ProxySealer,
			cards:  deps.Cards,
			ttl:    cfg.ProxySecretTTL,
		},
		logger: logger.With("module", "application"),
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}
