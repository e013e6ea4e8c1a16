package encryption_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostdesk/livechat-service/internal/pkg/encryption"
)

func generateTestKey(t *testing.T) string {
	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	return key
}

func TestNewAESEncryptor_Base64Key(t *testing.T) {
	// Arrange
	key := generateTestKey(t)

	// Act
	encryptor, err := encryption.NewAESEncryptor(key)

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, encryptor)
}

func TestNewAESEncryptor_RawKey(t *testing.T) {
	encryptor, err := encryption.NewAESEncryptor("0123456789abcdef0123456789abcdef")

	require.NoError(t, err)
	assert.NotNil(t, encryptor)
}

func TestNewAESEncryptor_InvalidKeyLength(t *testing.T) {
	encryptor, err := encryption.NewAESEncryptor("tooshort!!!")

	assert.Error(t, err)
	assert.Nil(t, encryptor)
	assert.Contains(t, err.Error(), "must be 32 bytes")
}

func TestAESEncryptor_RoundTrip(t *testing.T) {
	// Arrange
	encryptor, err := encryption.NewAESEncryptor(generateTestKey(t))
	require.NoError(t, err)
	plaintext := []byte(`{"chatEnabled":true}`)

	// Act
	first, err := encryptor.Encrypt(plaintext)
	require.NoError(t, err)
	second, err := encryptor.Encrypt(plaintext)
	require.NoError(t, err)
	decrypted, err := encryptor.Decrypt(first)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
	assert.NotEqual(t, first, second)
}

func TestAESEncryptor_DecryptWithWrongKey(t *testing.T) {
	a, err := encryption.NewAESEncryptor(generateTestKey(t))
	require.NoError(t, err)
	b, err := encryption.NewAESEncryptor(generateTestKey(t))
	require.NoError(t, err)

	sealed, err := a.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = b.Decrypt(sealed)
	assert.Error(t, err)
}

func TestAESEncryptor_DecryptGarbage(t *testing.T) {
	encryptor, err := encryption.NewAESEncryptor(generateTestKey(t))
	require.NoError(t, err)

	_, err = encryptor.Decrypt("not base64!")
	assert.Error(t, err)

	_, err = encryptor.Decrypt("YWJj")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestNew_SelectsImplementation(t *testing.T) {
	noop, err := encryption.New("")
	require.NoError(t, err)
	assert.IsType(t, &encryption.NoOpEncryptor{}, noop)

	aes, err := encryption.New(generateTestKey(t))
	require.NoError(t, err)
	assert.IsType(t, &encryption.AESEncryptor{}, aes)
}

func TestNoOpEncryptor_RoundTrip(t *testing.T) {
	e := encryption.NewNoOpEncryptor()

	sealed, err := e.Encrypt([]byte("plain"))
	require.NoError(t, err)
	out, err := e.Decrypt(sealed)

	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), out)
}
