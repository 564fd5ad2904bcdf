package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MediaStore stocke les images des posts et des avatars.
type MediaStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// Media est nil tant qu'aucun bucket n'est configuré.
var Media MediaStore

var ErrMediaDisabled = errors.New("stockage média non configuré")
var ErrInvalidExtension = errors.New("extension fichier invalide")

var validExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".heic": true,
}

// NewKey construit une clé unique "folder/<uuid><ext>" à partir du nom du fichier envoyé.
func NewKey(folder, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !validExtensions[ext] {
		return "", ErrInvalidExtension
	}
	return fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext), nil
}

// KeyFromURL retrouve la clé d'un objet à partir de son URL publique.
func KeyFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// Upload envoie body dans folder via Media.
func Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (string, error) {
	if Media == nil {
		return "", ErrMediaDisabled
	}
	key, err := NewKey(folder, filename)
	if err != nil {
		return "", err
	}
	return Media.Put(ctx, key, contentType, body)
}

// Remove supprime l'objet désigné par son URL. Sans stockage configuré, rien n'est fait.
func Remove(ctx context.Context, rawURL string) error {
	if Media == nil || rawURL == "" {
		return nil
	}
	key := KeyFromURL(rawURL)
	if key == "" {
		return nil
	}
	return Media.Delete(ctx, key)
}
