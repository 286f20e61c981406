package unit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/adapters/cache"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/application"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/ports"
)

const (
	testAccessToken = "delegated-access-token"
	testDocSecret   = "doc-server-session-secret"
	testDocServer   = "https://docs.example.com"
	testAuthHeader  = "X-Docs-Auth"
)

type uploadRecord struct {
	Card     string
	Filename string
	Token    string
	Content  []byte
}

type fakeCards struct {
	mu        sync.Mutex
	user      ports.CardUser
	size      int64
	uploadErr error
	uploads   []uploadRecord
}

func (f *fakeCards) Me(context.Context, string) (ports.CardUser, error) {
	return f.user, nil
}

func (f *fakeCards) AttachmentDownloadURL(cardID, attachmentID, filename string) string {
	return "https://cards.example.com/1/cards/" + cardID + "/attachments/" + attachmentID + "/download/" + url.PathEscape(filename)
}

func (f *fakeCards) ProbeSize(context.Context, string, string) (int64, error) {
	return f.size, nil
}

func (f *fakeCards) UploadAttachment(_ context.Context, cardID, filename, accessToken string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, uploadRecord{Card: cardID, Filename: filename, Token: accessToken, Content: data})
	return nil
}

func (f *fakeCards) AuthorizationHeader(string, string, string) string {
	return `OAuth oauth_consumer_key="test"`
}

func (f *fakeCards) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

type fakeDocServer struct {
	data    []byte
	err     error
	fetches int
}

func (f *fakeDocServer) FetchDocument(context.Context, string) (io.ReadCloser, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(string(f.data))), nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturePublisher) Publish(_ context.Context, eventType string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *capturePublisher) has(eventType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e == eventType {
			return true
		}
	}
	return false
}

type serviceEnv struct {
	svc    *application.Service
	sealer *security.AEADSealer
	signer *security.JWTConfigSigner
	store  *cache.MemoryDocumentKeyStore
	cards  *fakeCards
	docs   *fakeDocServer
	events *capturePublisher
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	sealer := security.NewAEADSealer("app-key")
	signer := security.NewJWTConfigSigner()
	store := cache.NewMemoryDocumentKeyStore()
	cards := &fakeCards{
		user: ports.CardUser{ID: "user-1", Username: "alice"},
		size: 1024,
	}
	docs := &fakeDocServer{data: []byte("edited document bytes")}
	events := &capturePublisher{}

	registry := application.NewRegistry(slog.Default())
	registry.Subscribe(application.NewSaveHandler(store, cards, docs, events, slog.Default()))

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServerBaseURL: "https://editor.example.com",
			CallbackPath:  "/onlyoffice/callback",
			ProxyAddress:  "https://proxy.example.com",
			MaxFileSize:   10 << 20,
		},
		AppSealer:   sealer,
		ProxySealer: security.NewAEADSealer("proxy-key"),
		Signer:      signer,
		Cache:       store,
		Cards:       cards,
		Events:      events,
		Registry:    registry,
		Logger:      slog.Default(),
	})
	return &serviceEnv{svc: svc, sealer: sealer, signer: signer, store: store, cards: cards, docs: docs, events: events}
}

func (env *serviceEnv) payloadJSON(t *testing.T, filename string) string {
	t.Helper()
	dsjwt, err := env.sealer.Encrypt(testDocSecret)
	if err != nil {
		t.Fatalf("seal document server secret: %v", err)
	}
	raw, err := json.Marshal(domain.EditorPayload{
		ProxyResource:   "cards.example.com",
		Attachment:      "att-1",
		Card:            "card-1",
		Filename:        filename,
		Token:           testAccessToken,
		DocServer:       testDocServer,
		DocServerHeader: testAuthHeader,
		DocServerJWT:    dsjwt,
		IsEditable:      true,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return string(raw)
}

// callbackCoordinates pulls the token and session query parameters out of the
// callback URL embedded in a freshly opened editor config.
func callbackCoordinates(t *testing.T, page application.EditorPage) (encToken, encSession string) {
	t.Helper()
	u, err := url.Parse(page.Config.EditorConfig.CallbackURL)
	if err != nil {
		t.Fatalf("parse callback url: %v", err)
	}
	q := u.Query()
	if q.Get("token") == "" || q.Get("session") == "" {
		t.Fatalf("callback url missing coordinates: %s", page.Config.EditorConfig.CallbackURL)
	}
	return q.Get("token"), q.Get("session")
}

func (env *serviceEnv) bearerHeader(t *testing.T) http.Header {
	t.Helper()
	bearer, err := env.signer.SignClaims(map[string]any{"payload": map[string]any{}}, testDocSecret)
	if err != nil {
		t.Fatalf("sign bearer: %v", err)
	}
	h := http.Header{}
	h.Set(testAuthHeader, "Bearer "+bearer)
	return h
}

func TestOpenEditorBuildsSignedConfig(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	page, err := env.svc.OpenEditor(ctx, env.payloadJSON(t, "report.docx"))
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}

	if page.APIScriptURL != testDocServer+"/web-apps/apps/api/documents/api.js" {
		t.Fatalf("unexpected api script url: %s", page.APIScriptURL)
	}
	cfg := page.Config
	if cfg.Document.Key == "" || cfg.Document.FileType != "docx" || cfg.Document.Title != "report.docx" {
		t.Fatalf("unexpected document block: %+v", cfg.Document)
	}
	if cfg.EditorConfig.Mode != "edit" {
		t.Fatalf("expected edit mode, got %s", cfg.EditorConfig.Mode)
	}
	if cfg.EditorConfig.User != (domain.EditorUser{ID: "user-1", Name: "alice"}) {
		t.Fatalf("unexpected editor user: %+v", cfg.EditorConfig.User)
	}
	if err := env.signer.VerifyBearer(cfg.Token, testDocSecret); err != nil {
		t.Fatalf("config token does not verify with the session secret: %v", err)
	}

	// The delegated credential must only appear encrypted.
	if strings.Contains(cfg.EditorConfig.CallbackURL, testAccessToken) {
		t.Fatal("callback url leaks the raw access token")
	}
	if strings.Contains(cfg.Document.URL, testAccessToken) {
		t.Fatal("document url leaks the raw access token")
	}

	key, err := env.store.GetKey(ctx, "att-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if key != cfg.Document.Key {
		t.Fatalf("cached key %q does not match config key %q", key, cfg.Document.Key)
	}
	if !env.events.has(application.EventEditorOpened) {
		t.Fatal("expected an editor_opened event")
	}
}

func TestOpenEditorFallsBackToViewMode(t *testing.T) {
	env := newServiceEnv(t)

	page, err := env.svc.OpenEditor(context.Background(), env.payloadJSON(t, "notes.odt"))
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	if page.Config.EditorConfig.Mode != "view" {
		t.Fatalf("expected view mode for a view-only format, got %s", page.Config.EditorConfig.Mode)
	}
	if page.Config.DocumentType != domain.DocTypeWord {
		t.Fatalf("unexpected document type: %s", page.Config.DocumentType)
	}
}

func TestOpenEditorReusesLiveDocumentKey(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	first, err := env.svc.OpenEditor(ctx, env.payloadJSON(t, "report.docx"))
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	second, err := env.svc.OpenEditor(ctx, env.payloadJSON(t, "report.docx"))
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if first.Config.Document.Key != second.Config.Document.Key {
		t.Fatalf("expected the live session to be joined: %q vs %q",
			first.Config.Document.Key, second.Config.Document.Key)
	}
}

func TestOpenEditorRejections(t *testing.T) {
	cases := map[string]struct {
		mutate  func(env *serviceEnv)
		payload func(env *serviceEnv, t *testing.T) string
		want    error
	}{
		"unsupported extension": {
			payload: func(env *serviceEnv, t *testing.T) string { return env.payloadJSON(t, "archive.zip") },
			want:    domain.ErrUnsupportedExtension,
		},
		"oversize file": {
			mutate:  func(env *serviceEnv) { env.cards.size = (10 << 20) + 1 },
			payload: func(env *serviceEnv, t *testing.T) string { return env.payloadJSON(t, "report.docx") },
			want:    domain.ErrFileTooLarge,
		},
		"unknown user": {
			mutate:  func(env *serviceEnv) { env.cards.user = ports.CardUser{} },
			payload: func(env *serviceEnv, t *testing.T) string { return env.payloadJSON(t, "report.docx") },
			want:    domain.ErrUnknownUser,
		},
		"unsealed document server credential": {
			payload: func(env *serviceEnv, t *testing.T) string {
				raw, _ := json.Marshal(domain.EditorPayload{
					ProxyResource: "cards.example.com", Attachment: "att-1", Card: "card-1",
					Filename: "report.docx", Token: testAccessToken, DocServer: testDocServer,
					DocServerHeader: testAuthHeader, DocServerJWT: "plain-secret",
				})
				return string(raw)
			},
			want: domain.ErrDecryptionFailed,
		},
		"unknown payload field": {
			payload: func(env *serviceEnv, t *testing.T) string {
				return strings.TrimSuffix(env.payloadJSON(t, "report.docx"), "}") + `,"extra":"x"}`
			},
			want: domain.ErrInvalidInput,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			env := newServiceEnv(t)
			if tc.mutate != nil {
				tc.mutate(env)
			}
			_, err := env.svc.OpenEditor(context.Background(), tc.payload(env, t))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCallbackSaveFlowPersistsAndReleases(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	page, err := env.svc.OpenEditor(ctx, env.payloadJSON(t, "report.docx"))
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	encToken, encSession := callbackCoordinates(t, page)

	body := []byte(`{"status":2,"url":"https://docs.example.com/cache/file.docx"}`)
	if err := env.svc.HandleCallback(ctx, encToken, encSession, env.bearerHeader(t), body); err != nil {
		t.Fatalf("handle callback: %v", err)
	}

	if got := env.cards.uploadCount(); got != 1 {
		t.Fatalf("expected one upload, got %d", got)
	}
	up := env.cards.uploads[0]
	if up.Card != "card-1" || up.Filename != "report.docx" || up.Token != testAccessToken {
		t.Fatalf("unexpected upload: %+v", up)
	}
	if string(up.Content) != "edited document bytes" {
		t.Fatalf("unexpected upload content: %q", up.Content)
	}

	key, err := env.store.GetKey(ctx, "att-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if key != "" {
		t.Fatalf("expected document key to be released, got %q", key)
	}
	rec, err := env.store.GetSession(ctx, page.Config.Document.Key)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected session record to be released, got %+v", rec)
	}
	if !env.events.has(application.EventSaveSucceeded) {
		t.Fatal("expected a save_succeeded event")
	}
}

func TestCallbackSaveWithoutURLKeepsSession(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	page, err := env.svc.OpenEditor(ctx, env.payloadJSON(t, "report.docx"))
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	encToken, encSession := callbackCoordinates(t, page)

	if err := env.svc.HandleCallback(ctx, encToken, encSession, env.bearerHeader(t), []byte(`{"status":2}`)); err != nil {
		t.Fatalf("handle callback: %v", err)
	}

	if got := env.cards.uploadCount(); got != 0 {
		t.Fatalf("expected no upload, got %d", got)
	}
	key, err := env.store.GetKey(ctx, "att-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if key != page.Config.Document.Key {
		t.Fatalf("expected the document key to stay live, got %q", key)
	}
}

func TestCallbackReplayAfterReleaseStillDispatches(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	page, err := env.svc.OpenEditor(ctx, env.payloadJSON(t, "report.docx"))
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	encToken, encSession := callbackCoordinates(t, page)
	headers := env.bearerHeader(t)
	body := []byte(`{"status":2,"url":"https://docs.example.com/cache/file.docx"}`)

	if err := env.svc.HandleCallback(ctx, encToken, encSession, headers, body); err != nil {
		t.Fatalf("first callback: %v", err)
	}
	// The session envelope is stateless, so a replay after release is still
	// authenticated and re-runs the save.
	if err := env.svc.HandleCallback(ctx, encToken, encSession, headers, body); err != nil {
		t.Fatalf("replayed callback: %v", err)
	}
	if got := env.cards.uploadCount(); got != 2 {
		t.Fatalf("expected two uploads across replay, got %d", got)
	}
}

func TestCallbackUploadFailureStillReleases(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	page, err := env.svc.OpenEditor(ctx, env.payloadJSON(t, "report.docx"))
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	env.cards.uploadErr = errors.New("card service down")
	encToken, encSession := callbackCoordinates(t, page)

	body := []byte(`{"status":2,"url":"https://docs.example.com/cache/file.docx"}`)
	if err := env.svc.HandleCallback(ctx, encToken, encSession, env.bearerHeader(t), body); err != nil {
		t.Fatalf("handle callback: %v", err)
	}

	key, err := env.store.GetKey(ctx, "att-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if key != "" {
		t.Fatalf("expected release despite upload failure, got %q", key)
	}
	if !env.events.has(application.EventSaveFailed) {
		t.Fatal("expected a save_failed event")
	}
}

func TestCallbackAuthenticationFailures(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	page, err := env.svc.OpenEditor(ctx, env.payloadJSON(t, "report.docx"))
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	encToken, encSession := callbackCoordinates(t, page)
	body := []byte(`{"status":1}`)

	wrongBearer, err := env.signer.SignClaims(map[string]any{"payload": map[string]any{}}, "wrong-secret")
	if err != nil {
		t.Fatalf("sign bearer: %v", err)
	}
	wrongSecretHeader := http.Header{}
	wrongSecretHeader.Set(testAuthHeader, "Bearer "+wrongBearer)

	cases := map[string]struct {
		token   string
		session string
		headers http.Header
	}{
		"tampered token":   {"A" + encToken, encSession, env.bearerHeader(t)},
		"tampered session": {encToken, "A" + encSession, env.bearerHeader(t)},
		"missing bearer":   {encToken, encSession, http.Header{}},
		"wrong secret":     {encToken, encSession, wrongSecretHeader},
	}
	for name, tc := range cases {
		err := env.svc.HandleCallback(ctx, tc.token, tc.session, tc.headers, body)
		if !errors.Is(err, domain.ErrAuthenticationFailed) {
			t.Fatalf("%s: expected ErrAuthenticationFailed, got %v", name, err)
		}
	}
}
