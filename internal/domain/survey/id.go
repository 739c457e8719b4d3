package survey

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	LocalIDPrefix  = "local_"
	ServerIDPrefix = "server_"
	ClientIDPrefix = "SURVEY_"
)

// NewLocalID returns local_<unix millis>_<9 random hex chars>.
func NewLocalID(now time.Time) string {
	return fmt.Sprintf("%s%d_%s", LocalIDPrefix, now.UnixMilli(), randomSuffix())
}

// NewClientSurveyID returns SURVEY_<unix millis>_<9 random hex chars>. It is
// sent as survey_id on every create of the record so the server can detect a
// retried create and answer 409.
func NewClientSurveyID(now time.Time) string {
	return fmt.Sprintf("%s%d_%s", ClientIDPrefix, now.UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// LocalIDForServer is the local id given to a record first seen through a pull.
func LocalIDForServer(serverID string) string {
	return ServerIDPrefix + serverID
}

func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// IsPlaceholder reports whether id can never name a record on the server.
func IsPlaceholder(id string) bool {
	return id == "" || IsLocalID(id)
}
