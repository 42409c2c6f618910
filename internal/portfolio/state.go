package portfolio

import (
	"encoding/json"
	"os"

	"StockLens/internal/model"
)

// LoadState reads sessions from a JSON file. A missing file yields no sessions.
func LoadState(filePath string) (map[string]*model.SessionState, error) {
	sessions := make(map[string]*model.SessionState)
	if filePath == "" {
		return sessions, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return sessions, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.Portfolio == nil {
			s.Portfolio = make(map[string]*model.Position)
		}
	}
	return sessions, nil
}

// SaveState writes sessions to a JSON file. An empty path disables persistence.
func SaveState(filePath string, sessions map[string]*model.SessionState) error {
	if filePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
