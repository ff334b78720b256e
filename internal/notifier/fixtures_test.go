package notifier

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"testing"

	"doctor-duty-notifier/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testServiceAccount(t *testing.T, tokenURI string) (*ServiceAccount, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	raw, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "health-center",
		"private_key_id": "kid-1",
		"private_key":    string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})),
		"client_email":   "notifier@health-center.iam.gserviceaccount.com",
		"token_uri":      tokenURI,
	})
	require.NoError(t, err)

	account, err := ParseServiceAccount(raw)
	require.NoError(t, err)
	return account, key
}

func testAlert() entity.UpcomingAlert {
	return entity.UpcomingAlert{
		DoctorName:      "Dr. Smith",
		Category:        entity.DutyCategoryRegular,
		StartsInMinutes: 15,
		TimeRangeText:   "09:15 AM-11:00 AM",
		DateLabel:       "31/01/2026 SATURDAY",
	}
}
