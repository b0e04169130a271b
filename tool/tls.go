package tool

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"

	"github.com/moyoez/upload-widget-go/types"
)

// GetOrCreateTLSCertFromConfig loads the certificate kept in config or generates a
// self-signed one and stores its PEM back into cfg.
// A page served over https can only embed the widget when the widget is https too.
func GetOrCreateTLSCertFromConfig(cfg *types.AppConfig) (tls.Certificate, error) {
	if cfg.CertPEM != "" && cfg.KeyPEM != "" {
		cert, err := loadTLSCertFromPEM(cfg.CertPEM, cfg.KeyPEM)
		if err == nil {
			DefaultLogger.Infof("Loaded existing TLS certificate from config")
			return cert, nil
		}
		DefaultLogger.Warnf("Certificate in config is invalid or expired: %v, regenerating...", err)
	}

	certPEM, keyPEM, err := generateTLSCert()
	if err != nil {
		return tls.Certificate{}, err
	}
	cfg.CertPEM = string(certPEM)
	cfg.KeyPEM = string(keyPEM)

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to load TLS certificate: %v", err)
	}
	DefaultLogger.Infof("TLS certificate generated and stored in config (fingerprint %s)", CertFingerprint(cert))
	return cert, nil
}

// CertFingerprint is the hex SHA-256 of the leaf certificate, shown so users can
// compare it with what the browser reports.
func CertFingerprint(cert tls.Certificate) string {
	if len(cert.Certificate) == 0 {
		return ""
	}
	hash := sha256.Sum256(cert.Certificate[0])
	return hex.EncodeToString(hash[:])
}

// loadTLSCertFromPEM parses the pair and fails if the certificate has expired.
func loadTLSCertFromPEM(certPEMStr, keyPEMStr string) (tls.Certificate, error) {
	cert, err := tls.X509KeyPair([]byte(certPEMStr), []byte(keyPEMStr))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to parse certificate: %v", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to parse certificate: %v", err)
	}
	if time.Now().After(leaf.NotAfter) {
		return tls.Certificate{}, fmt.Errorf("certificate has expired")
	}
	return cert, nil
}

// generateTLSCert generates a new self-signed certificate and key, PEM encoded.
func generateTLSCert() (certPEM []byte, keyPEM []byte, err error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate ECDSA private key: %v", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate serial number: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   "upload-widget-localCert",
			Organization: []string{"upload-widget-localCert"},
		},
		DNSNames:    []string{"localhost"},
		NotBefore:   time.Now(),
		NotAfter:    time.Now().Add(time.Hour * 24 * 365), // 1 year validity
		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal ECDSA private key: %v", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, nil
}
