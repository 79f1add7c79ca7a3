package badger

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
)

// CredentialFile represents one channel credential section in TOML format.
// Format:
//
//	[tenant_id.channel]
//	access_token = "..."
//	api_key = "..."
//	account_id = "..."
type CredentialFile struct {
	AccessToken  string            `toml:"access_token"`
	RefreshToken string            `toml:"refresh_token"`
	APIKey       string            `toml:"api_key"`
	AccountID    string            `toml:"account_id"`
	Extra        map[string]string `toml:"extra"`
}

// LoadCredentialsFromFiles seeds channel credentials from TOML files in the
// given directory. File sections are keyed tenant first, then channel.
// Missing directory is not an error; individual file failures are logged
// and skipped.
func LoadCredentialsFromFiles(ctx context.Context, credStorage interfaces.CredentialStorage, dirPath string, logger arbor.ILogger) error {
	logger.Debug().Str("dir", dirPath).Msg("Loading credentials from files")

	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		logger.Debug().Str("dir", dirPath).Msg("Credentials directory does not exist, skipping")
		return nil
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dirPath).Msg("Failed to read credentials directory")
		return nil // Non-fatal
	}

	loadedCount := 0
	errorCount := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}

		filePath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(filePath)
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to read credential file")
			errorCount++
			continue
		}

		// tenant -> channel -> credential fields
		var tenants map[string]map[string]CredentialFile
		if err := toml.Unmarshal(content, &tenants); err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to parse credential file")
			errorCount++
			continue
		}

		for tenantID, channels := range tenants {
			for channelName, cf := range channels {
				channel := models.Channel(channelName)
				if err := models.ValidateChannel(channel); err != nil {
					logger.Warn().Str("file", entry.Name()).Str("channel", channelName).Msg("Unknown channel in credential file, skipping")
					errorCount++
					continue
				}

				cred := &models.StoredCredential{
					TenantID:     tenantID,
					Channel:      channel,
					AccessToken:  cf.AccessToken,
					RefreshToken: cf.RefreshToken,
					APIKey:       cf.APIKey,
					AccountID:    cf.AccountID,
					Extra:        cf.Extra,
				}

				if err := credStorage.StoreCredential(ctx, cred); err != nil {
					logger.Warn().Err(err).Str("tenant", tenantID).Str("channel", channelName).Msg("Failed to store seeded credential")
					errorCount++
					continue
				}
				loadedCount++
			}
		}
	}

	if loadedCount > 0 || errorCount > 0 {
		logger.Info().Int("loaded", loadedCount).Int("errors", errorCount).Msg("Credential seed files processed")
	}

	return nil
}
