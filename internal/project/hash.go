package project

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"spbg/internal/diag"
)

// Digest - фиксированный 256 битный хеш содержимого файла
type Digest [32]byte

// Hex renders the digest in lowercase hex.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// DigestBytes hashes data.
func DigestBytes(data []byte) Digest {
	return sha256.Sum256(data)
}

// DigestFile hashes the file at path.
func DigestFile(path string) (Digest, error) {
	// #nosec G304 -- path is an input or output file of the current run
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, diag.Wrap(diag.IOReadFailed, path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, diag.Wrap(diag.IOReadFailed, path, err)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out, nil
}
