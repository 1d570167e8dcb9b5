package telegram

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"

	"mediarelay/internal/core/exchange"
	"mediarelay/internal/core/normalize"
	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/metrics"
	pstrings "mediarelay/internal/platform/strings"

	aggregator "mediarelay/internal/services/aggregator/domain"
)

// FileLinker resolves a file id to a download URL; *tgbotapi.BotAPI implements it
type FileLinker interface {
	GetFileDirectURL(fileID string) (string, error)
}

// Downloader saves Telegram attachments for the aggregator
type Downloader struct {
	files  FileLinker
	client *http.Client
}

// NewDownloader returns a Downloader; opts.DownloadTimeout bounds each file
func NewDownloader(files FileLinker, o Options) *Downloader {
	return &Downloader{files: files, client: &http.Client{Timeout: o.DownloadTimeout}}
}

// Download writes the attachment into dir under its original or server-side name
func (d *Downloader) Download(ctx context.Context, ref aggregator.FileRef, dir string) (string, error) {
	link, err := d.files.GetFileDirectURL(ref.ID)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "resolve file %s", ref.ID)
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeRemote, "file link for %s", ref.ID)
	}
	name := normalize.FileName(pstrings.FirstNonBlank(ref.Name, path.Base(u.Path)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "build request for %s", ref.ID)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "download %s", ref.ID)
	}
	defer resp.Body.Close()
	if err := perr.FromStatus(resp.StatusCode, "download "+ref.ID); err != nil {
		return "", err
	}

	dest := filepath.Join(dir, name)
	var n int64
	err = exchange.WriteAtomic(dest, func(w io.Writer) error {
		var cerr error
		n, cerr = io.Copy(w, resp.Body)
		return perr.WrapIf(cerr, perr.ErrorCodeUnavailable, "read "+ref.ID)
	})
	if err != nil {
		return "", err
	}
	metrics.BytesDownloaded.WithLabelValues("telegram").Add(float64(n))
	return dest, nil
}
