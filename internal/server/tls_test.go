// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestCert(t *testing.T) (string, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func TestLoadTLSConfig_Disabled(t *testing.T) {
	cfg, err := loadTLSConfig(config.TLSConfig{})

	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadTLSConfig(t *testing.T) {
	certFile, keyFile := writeTestCert(t)

	cfg, err := loadTLSConfig(config.TLSConfig{CertFile: certFile, KeyFile: keyFile})

	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

func TestLoadTLSConfig_Errors(t *testing.T) {
	certFile, keyFile := writeTestCert(t)

	tests := []struct {
		name string
		cfg  config.TLSConfig
	}{
		{"cert only", config.TLSConfig{CertFile: certFile}},
		{"missing cert", config.TLSConfig{CertFile: filepath.Join(t.TempDir(), "nope.pem"), KeyFile: keyFile}},
		{"missing key", config.TLSConfig{CertFile: certFile, KeyFile: filepath.Join(t.TempDir(), "nope.pem")}},
		{"swapped", config.TLSConfig{CertFile: keyFile, KeyFile: certFile}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadTLSConfig(tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestFingerprint(t *testing.T) {
	certFile, keyFile := writeTestCert(t)
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	require.NoError(t, err)

	fp := fingerprint(&cert)

	assert.Len(t, strings.Split(fp, ":"), 32)
	assert.Empty(t, fingerprint(&tls.Certificate{}))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "text")

	logger.Debug("debugging")

	assert.Contains(t, buf.String(), "debugging")
}

func TestBodyLimitString(t *testing.T) {
	assert.Equal(t, "1M", bodyLimit(0))
	assert.Equal(t, "4M", bodyLimit(4))
}
