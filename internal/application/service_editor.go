package application

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/ports"
)

// OpenEditor validates the client-submitted payload, establishes (or joins)
// the editing session for the attachment, and produces the signed editor
// config. Two concurrent opens for the same (card, attachment) observe the
// same cached document key and fold into one document-server-side session;
// the cache entry is a uniqueness token, not a lock.
func (s *Service) OpenEditor(ctx context.Context, rawPayload string) (EditorPage, error) {
	payload, err := domain.ParseEditorPayload(rawPayload)
	if err != nil {
		return EditorPage{}, err
	}

	// The document-server secret travels encrypted; it is needed in plaintext
	// only to sign the config below.
	docSecret, err := s.appSealer.Decrypt(payload.DocServerJWT)
	if err != nil {
		return EditorPage{}, err
	}

	ext := domain.FileExtension(payload.Filename)
	if !domain.IsViewable(ext) {
		return EditorPage{}, domain.ErrUnsupportedExtension
	}
	mode := "view"
	if payload.IsEditable && domain.IsEditable(ext) {
		mode = "edit"
	}

	fileURL := s.cards.AttachmentDownloadURL(payload.Card, payload.Attachment, payload.Filename)
	size, err := s.cards.ProbeSize(ctx, fileURL, payload.Token)
	if err != nil {
		return EditorPage{}, fmt.Errorf("probe attachment: %w", err)
	}
	if size > s.cfg.MaxFileSize {
		return EditorPage{}, domain.ErrFileTooLarge
	}

	proxySecret := payload.ProxySecret
	if proxySecret == "" {
		proxySecret, err = s.issuer.Issue(fileURL, payload.Token, docSecret, s.nowFn())
		if err != nil {
			return EditorPage{}, fmt.Errorf("issue proxy secret: %w", err)
		}
	}

	me, err := s.cards.Me(ctx, payload.Token)
	if err != nil {
		return EditorPage{}, fmt.Errorf("resolve user: %w", err)
	}
	if me.ID == "" || me.Username == "" {
		return EditorPage{}, domain.ErrUnknownUser
	}

	docKey, err := s.documentKey(ctx, payload)
	if err != nil {
		return EditorPage{}, fmt.Errorf("document key: %w", err)
	}

	session := domain.Session{
		Version:    domain.SessionVersion,
		Address:    payload.DocServer,
		Header:     payload.DocServerHeader,
		Secret:     payload.DocServerJWT,
		Attachment: payload.Attachment,
		File:       url.PathEscape(payload.Filename),
		Card:       payload.Card,
	}
	encSession, err := domain.EncodeSession(session)
	if err != nil {
		return EditorPage{}, err
	}
	encToken, err := s.appSealer.Encrypt(payload.Token)
	if err != nil {
		return EditorPage{}, err
	}

	config := domain.Config{
		DocumentType: domain.DocumentTypeByExtension(ext),
		Document: domain.Document{
			FileType: ext,
			Key:      docKey,
			Title:    payload.Filename,
			URL: fmt.Sprintf("%s/proxy?secret=%s&resource=%s",
				s.cfg.ProxyAddress, url.QueryEscape(proxySecret), url.QueryEscape(payload.ProxyResource)),
		},
		EditorConfig: domain.EditorConfig{
			CallbackURL: fmt.Sprintf("%s%s?token=%s&session=%s",
				s.cfg.ServerBaseURL, s.cfg.CallbackPath, url.QueryEscape(encToken), url.QueryEscape(encSession)),
			User: domain.EditorUser{ID: me.ID, Name: me.Username},
			Mode: mode,
		},
		Attachment: payload.Attachment,
	}
	config.Token, err = s.signer.SignClaims(config, docSecret)
	if err != nil {
		return EditorPage{}, fmt.Errorf("sign config: %w", err)
	}

	s.publish(ctx, EventEditorOpened, map[string]string{
		"card":       payload.Card,
		"attachment": payload.Attachment,
		"key":        docKey,
		"mode":       mode,
	})

	return EditorPage{
		APIScriptURL: domain.EditorScriptURL(payload.DocServer),
		Config:       config,
	}, nil
}

// documentKey returns the live document key for the attachment, minting one
// only when no editing session exists. A second open during the live window
// reuses the existing key rather than starting a new session.
func (s *Service) documentKey(ctx context.Context, payload domain.EditorPayload) (string, error) {
	existing, err := s.cache.GetKey(ctx, payload.Attachment)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	key := uuid.NewString()
	if err := s.cache.PutKey(ctx, payload.Attachment, key); err != nil {
		return "", err
	}
	rec := ports.SessionRecord{
		Attachment: payload.Attachment,
		Card:       payload.Card,
		Filename:   payload.Filename,
		CreatedAt:  s.nowFn(),
	}
	if err := s.cache.PutSession(ctx, key, rec); err != nil {
		return "", err
	}
	return key, nil
}
