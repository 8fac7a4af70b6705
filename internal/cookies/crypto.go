package cookies

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1" //nolint:gosec // Chromium's legacy cookie encryption is PBKDF2-SHA1 by definition.
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"
)

const (
	aesCBCSalt   = "saltysalt"
	aesCBCIV     = "                " // 16 spaces
	aesCBCKeyLen = 16

	iterationsLinux = 1
	iterationsMacOS = 1003
)

// envSafeStoragePassword overrides the keyring lookup, mainly for tests and
// headless environments without a secret service.
const envSafeStoragePassword = "WHATS_THIS_ID_SAFE_STORAGE_PASSWORD"

// decryptFunc decrypts one encrypted_value column. The bool reports success;
// failures skip the row rather than aborting the export.
type decryptFunc func(encrypted []byte, metaVersion int64) (string, bool)

// newDecryptor builds the decryptor for the current OS. Chromium encrypts
// cookie values with AES-128-CBC; the key is derived from "peanuts" (Linux
// v10), the OS keyring safe-storage password (Linux v11, macOS v10), or is
// unavailable (DPAPI-bound values elsewhere).
func newDecryptor() decryptFunc {
	iterations := iterationsLinux
	if runtime.GOOS == "darwin" {
		iterations = iterationsMacOS
	}

	keys := [][]byte{}
	if password := safeStoragePassword(); password != "" {
		keys = append(keys, deriveKey(password, iterations))
	}
	if runtime.GOOS != "darwin" {
		keys = append(keys, deriveKey("peanuts", iterations))
	}
	keys = append(keys, deriveKey("", iterations))

	return func(encrypted []byte, metaVersion int64) (string, bool) {
		if !hasVersionPrefix(encrypted) {
			return "", false
		}
		for _, key := range keys {
			plain, err := decryptAESCBC(encrypted, key, metaVersion)
			if err == nil {
				return string(plain), true
			}
		}
		return "", false
	}
}

// safeStoragePassword fetches the browser's safe-storage password from the OS
// keyring, trying Chromium then Chrome service names.
func safeStoragePassword() string {
	if override := strings.TrimSpace(os.Getenv(envSafeStoragePassword)); override != "" {
		return override
	}
	for _, svc := range []struct{ service, account string }{
		{"Chromium Safe Storage", "Chromium"},
		{"Chrome Safe Storage", "Chrome"},
	} {
		if pw, err := keyring.Get(svc.service, svc.account); err == nil && strings.TrimSpace(pw) != "" {
			return strings.TrimSpace(pw)
		}
	}
	return ""
}

func deriveKey(password string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), []byte(aesCBCSalt), iterations, aesCBCKeyLen, sha1.New)
}

func decryptAESCBC(encrypted, key []byte, metaVersion int64) ([]byte, error) {
	if len(encrypted) <= 3 {
		return nil, fmt.Errorf("encrypted value too short (%d bytes)", len(encrypted))
	}

	ciphertext := encrypted[3:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("cipher input not full blocks")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, []byte(aesCBCIV)).CryptBlocks(out, ciphertext)

	out, err = removePKCS7Padding(out)
	if err != nil {
		return nil, err
	}
	return stripHashPrefix(out, metaVersion), nil
}

// stripHashPrefix drops the leading SHA-256 domain digest that Chromium
// prepends to plaintext values since meta version 24.
func stripHashPrefix(plain []byte, metaVersion int64) []byte {
	if metaVersion >= 24 && len(plain) >= 32 {
		return plain[32:]
	}
	return plain
}

func hasVersionPrefix(b []byte) bool {
	return len(b) >= 3 && b[0] == 'v' && isDigit(b[1]) && isDigit(b[2])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func removePKCS7Padding(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return b, nil
	}
	paddingLen := int(b[len(b)-1])
	if paddingLen <= 0 || paddingLen > aes.BlockSize || paddingLen > len(b) {
		return nil, fmt.Errorf("invalid padding length: %d", paddingLen)
	}
	for _, p := range b[len(b)-paddingLen:] {
		if int(p) != paddingLen {
			return nil, errors.New("invalid padding bytes")
		}
	}
	return b[:len(b)-paddingLen], nil
}
