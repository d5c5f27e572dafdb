package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-last-sunday/internal/config"
	"github.com/tartampluch/go-last-sunday/internal/engine"
)

// MockFetcher simulates the network layer using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.CardFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestParseCard_Formats(t *testing.T) {
	tests := []struct {
		name      string
		bdayValue string
		want      time.Time
		wantErr   bool
	}{
		{"ISO8601 Standard", "1990-10-25", date(1990, 10, 25), false},
		{"Basic Format", "19901025", date(1990, 10, 25), false},
		{"RFC3339", "1990-10-25T00:00:00Z", date(1990, 10, 25), false},
		{"RFC3339 with offset keeps the written day", "1990-10-25T23:30:00-05:00", date(1990, 10, 25), false},
		{"Truncated (Month-Day) has no year", "--10-25", time.Time{}, true},
		{"Garbage Data", "not-a-date", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nBDAY:" + tt.bdayValue + "\nEND:VCARD"
			profile, err := engine.ParseCard(strings.NewReader(content), time.UTC)
			if tt.wantErr {
				assert.ErrorIs(t, err, engine.ErrNoBirthday)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Test", profile.Name)
			assert.Equal(t, tt.want, profile.BirthDate)
		})
	}
}

func TestParseCard_FirstUsableCard(t *testing.T) {
	content := `BEGIN:VCARD
VERSION:3.0
FN:No Birthday
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Year Unknown
BDAY:--04-02
END:VCARD
BEGIN:VCARD
VERSION:4.0
N:Lovelace;Ada;;;
BDAY:1815-12-10
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Second Match
BDAY:1990-01-01
END:VCARD`

	profile, err := engine.ParseCard(strings.NewReader(content), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.Name, "Structured name is used when FN is missing")
	assert.Equal(t, date(1815, 12, 10), profile.BirthDate)
}

func TestParseCard_Empty(t *testing.T) {
	_, err := engine.ParseCard(strings.NewReader(""), time.UTC)
	assert.ErrorIs(t, err, engine.ErrNoBirthday)
}

func TestCardProfile_Apply(t *testing.T) {
	s := engine.DefaultSettings()
	out := engine.CardProfile{Name: "Ada", BirthDate: date(1815, 12, 10)}.Apply(s)

	assert.Equal(t, "Ada", out.Name)
	assert.Equal(t, date(1815, 12, 10), out.BirthDate)
	assert.Equal(t, s.LifeExpectancy, out.LifeExpectancy, "Only name and birth date are imported")
	assert.Equal(t, config.DefaultName, s.Name, "Apply returns a copy")
}

func TestImporter_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.vcf")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN:VCARD\nVERSION:3.0\nFN:John Doe\nBDAY:2000-01-01\nEND:VCARD"), config.FilePermUserRW))

	im := &engine.Importer{}
	profile, err := im.Import(context.Background(), engine.CardSource{Mode: config.ImportModeLocal, LocalPath: path})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", profile.Name)
	assert.Equal(t, 2000, profile.BirthDate.Year())
}

func TestImporter_Web(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://dav.example.com/me.vcf", "ada", "secret").
		Return(io.NopCloser(strings.NewReader("BEGIN:VCARD\nVERSION:3.0\nFN:Ada\nBDAY:18151210\nEND:VCARD")), nil)

	im := &engine.Importer{Fetcher: fetcher}
	profile, err := im.Import(context.Background(), engine.CardSource{
		Mode:    config.ImportModeWeb,
		WebURL:  "https://dav.example.com/me.vcf",
		WebUser: "ada",
		WebPass: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
	fetcher.AssertExpectations(t)
}

func TestImporter_Errors(t *testing.T) {
	networkErr := errors.New("network unreachable")
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, networkErr)

	tests := []struct {
		name    string
		im      *engine.Importer
		src     engine.CardSource
		wantErr string
	}{
		{"Empty local path", &engine.Importer{}, engine.CardSource{Mode: config.ImportModeLocal}, config.ErrLocalPathEmpty},
		{"Missing file", &engine.Importer{}, engine.CardSource{Mode: config.ImportModeLocal, LocalPath: filepath.Join(t.TempDir(), "nope.vcf")}, config.ErrVCardParse},
		{"Empty URL", &engine.Importer{Fetcher: fetcher}, engine.CardSource{Mode: config.ImportModeWeb}, config.ErrWebURLEmpty},
		{"No fetcher", &engine.Importer{}, engine.CardSource{Mode: config.ImportModeWeb, WebURL: "http://x"}, config.ErrFetcherMissing},
		{"Unknown mode", &engine.Importer{}, engine.CardSource{Mode: "ftp"}, config.ErrModeUnsupport},
		{"Network error", &engine.Importer{Fetcher: fetcher}, engine.CardSource{Mode: config.ImportModeWeb, WebURL: "http://x"}, networkErr.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.im.Import(context.Background(), tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImporter_ContextCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.vcf")
	require.NoError(t, os.WriteFile(path, nil, config.FilePermUserRW))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&engine.Importer{}).Import(ctx, engine.CardSource{Mode: config.ImportModeLocal, LocalPath: path})
	assert.Equal(t, context.Canceled, err)
}
