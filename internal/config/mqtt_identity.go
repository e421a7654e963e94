package config

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// resolveTopicPrefix puts the client certificate's CN in front of the topic
// prefix when UseCertCNPrefix is set. Brokers that scope ACLs by certificate
// identity only accept topics under that CN.
func (c *MQTTConfig) resolveTopicPrefix() error {
	if !c.UseCertCNPrefix {
		return nil
	}
	if c.ClientCert == "" {
		return invalid("mqtt use cert cn prefix", "requires a client certificate")
	}

	cn, err := certificateCommonName(c.ClientCert)
	if err != nil {
		return invalidErr("mqtt client certificate", "has no usable CN", err)
	}

	switch c.TopicPrefix {
	case "":
		c.TopicPrefix = cn
	default:
		c.TopicPrefix = cn + "/" + c.TopicPrefix
	}
	return nil
}

// certificateCommonName reads the subject CN of the first certificate in a PEM
// file. Keys or other blocks ahead of it are skipped.
func certificateCommonName(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is operator supplied
	if err != nil {
		return "", err
	}

	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return "", errors.New("no PEM certificate found")
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return "", fmt.Errorf("parse certificate: %w", err)
		}
		if cert.Subject.CommonName == "" {
			return "", errors.New("certificate subject has an empty CN")
		}
		return cert.Subject.CommonName, nil
	}
}
