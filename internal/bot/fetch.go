package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// FileURLResolver turns a Telegram file id into a download URL.
// *tgbotapi.BotAPI implements it.
type FileURLResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

// TelegramFetcher downloads voice notes from Telegram's file storage.
type TelegramFetcher struct {
	files  FileURLResolver
	client *http.Client
}

func NewTelegramFetcher(files FileURLResolver, client *http.Client) *TelegramFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &TelegramFetcher{files: files, client: client}
}

func (f *TelegramFetcher) Fetch(ctx context.Context, fileRef, path string) error {
	link, err := f.files.GetFileDirectURL(fileRef)
	if err != nil {
		return fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("request %s: %w", fileRef, stripURL(err))
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", fileRef, stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: unexpected status %s", resp.Status)
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

// stripURL drops the request URL from err. File URLs embed the bot token.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
