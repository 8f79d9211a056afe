package sheet

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/httputil"
)

// Loader reads sheet exports from URLs or local files.
type Loader struct {
	client *httputil.Client
	logger *log.Logger
}

// NewLoader creates a Loader. A nil client gets an uncached default; a nil
// logger discards warnings.
func NewLoader(client *httputil.Client, logger *log.Logger) *Loader {
	if client == nil {
		client = httputil.NewClient(nil, 0, nil)
	}
	return &Loader{client: client, logger: logger}
}

// IsURL reports whether source should be fetched over HTTP.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns the raw CSV bytes of source. With refresh set, cached
// downloads are ignored.
func (l *Loader) Fetch(ctx context.Context, source string, refresh bool) ([]byte, error) {
	if IsURL(source) {
		if err := errors.ValidateURL(source); err != nil {
			return nil, err
		}
		return l.client.GetBytes(ctx, source, refresh)
	}

	if err := errors.ValidatePath(source); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(source)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "sheet %s", source)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", source)
	}
	return data, nil
}

// Parse decodes CSV bytes and builds family data from them.
func (l *Loader) Parse(ctx context.Context, raw []byte) (*family.Data, error) {
	rows, err := ReadCSV(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return Build(ctx, rows, Options{Logger: l.logger})
}

// Load fetches source and builds family data from it.
func (l *Loader) Load(ctx context.Context, source string, refresh bool) (*family.Data, error) {
	raw, err := l.Fetch(ctx, source, refresh)
	if err != nil {
		return nil, err
	}
	return l.Parse(ctx, raw)
}
