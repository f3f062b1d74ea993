package utils

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"
)

// PayloadDigest returns a short hex BLAKE2b-256 prefix of an encoded payload,
// used to correlate frames across log lines without dumping their contents.
func PayloadDigest(payload []byte) string {
	hash := blake2b.Sum256(payload)
	return hex.EncodeToString(hash[:8])
}

// ZerologConsoleWriter returns a human-readable console writer for zerolog
// that writes to stderr, keeping stdout free for encoded frames.
func ZerologConsoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
}
