package main

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/atinyakov/xenon/internal/certgen"
)

func readCert(t *testing.T, path string) *x509.Certificate {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		t.Fatalf("%s: no PEM block", path)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("%s: %v", path, err)
	}
	return cert
}

func TestRun_WritesBundle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	var out bytes.Buffer
	if err := run([]string{"-dir", dir, "-hosts", "localhost, 10.0.0.1", "-client", "laptop"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Certificates generated") {
		t.Errorf("unexpected output %q", out.String())
	}

	for _, name := range []string{certgen.CACert, certgen.CAKey, certgen.ServerCert, certgen.ServerKey, certgen.ClientCert, certgen.ClientKey} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}

	ca := readCert(t, filepath.Join(dir, certgen.CACert))
	server := readCert(t, filepath.Join(dir, certgen.ServerCert))
	client := readCert(t, filepath.Join(dir, certgen.ClientCert))

	if err := server.CheckSignatureFrom(ca); err != nil {
		t.Errorf("server certificate not signed by CA: %v", err)
	}
	if !reflect.DeepEqual(server.DNSNames, []string{"localhost"}) {
		t.Errorf("DNSNames = %v", server.DNSNames)
	}
	if len(server.IPAddresses) != 1 || server.IPAddresses[0].String() != "10.0.0.1" {
		t.Errorf("IPAddresses = %v", server.IPAddresses)
	}
	if client.Subject.CommonName != "laptop" {
		t.Errorf("client CommonName = %q", client.Subject.CommonName)
	}
}

func TestRun_ReusesCA(t *testing.T) {
	dir := t.TempDir()
	if err := run([]string{"-dir", dir}, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	first := readCert(t, filepath.Join(dir, certgen.CACert))

	var out bytes.Buffer
	if err := run([]string{"-dir", dir, "-client", "second"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Reused CA") {
		t.Errorf("expected CA reuse, got %q", out.String())
	}
	if !readCert(t, filepath.Join(dir, certgen.CACert)).Equal(first) {
		t.Error("CA certificate was replaced")
	}
	if err := readCert(t, filepath.Join(dir, certgen.ClientCert)).CheckSignatureFrom(first); err != nil {
		t.Errorf("new client certificate not signed by the original CA: %v", err)
	}
}

func TestRun_BadFlags(t *testing.T) {
	if err := run([]string{"-days", "0", "-dir", t.TempDir()}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for non-positive days")
	}
	if err := run([]string{"-dir", t.TempDir(), "-hosts", " , "}, &bytes.Buffer{}); err == nil {
		t.Error("expected error without hosts")
	}
}
