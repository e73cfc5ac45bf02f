// Package main generates the development CA, server and client certificates
// for running the Xenon command server with mutual TLS.
//
// An existing CA in the output directory is reused, so client certificates
// can be reissued without invalidating the server's trust anchor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/xenon/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := flags.String("dir", "certs", "output directory")
	hosts := flags.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	client := flags.String("client", "xenon-client", "client certificate common name")
	days := flags.Int("days", 365, "validity of issued certificates in days")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *days < 1 {
		return fmt.Errorf("days must be positive, got %d", *days)
	}
	validFor := time.Duration(*days) * 24 * time.Hour

	ca, reused, err := loadOrCreateCA(*dir)
	if err != nil {
		return err
	}

	server, err := ca.IssueServer(splitHosts(*hosts), validFor)
	if err != nil {
		return fmt.Errorf("issue server certificate: %w", err)
	}
	if err := certgen.WriteFiles(*dir, certgen.ServerCert, certgen.ServerKey, server); err != nil {
		return err
	}

	cl, err := ca.IssueClient(*client, validFor)
	if err != nil {
		return fmt.Errorf("issue client certificate: %w", err)
	}
	if err := certgen.WriteFiles(*dir, certgen.ClientCert, certgen.ClientKey, cl); err != nil {
		return err
	}

	if reused {
		fmt.Fprintf(out, "Reused CA in %s\n", *dir)
	}
	fmt.Fprintf(out, "Certificates generated into %s\n", *dir)
	return nil
}

func loadOrCreateCA(dir string) (*certgen.Authority, bool, error) {
	certPath := filepath.Join(dir, certgen.CACert)
	keyPath := filepath.Join(dir, certgen.CAKey)

	ca, err := certgen.LoadCA(certPath, keyPath)
	if err == nil {
		return ca, true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	ca, err = certgen.NewCA("Xenon Dev CA", 10*365*24*time.Hour)
	if err != nil {
		return nil, false, err
	}
	if err := certgen.WriteFiles(dir, certgen.CACert, certgen.CAKey, ca.Pair()); err != nil {
		return nil, false, err
	}
	return ca, false, nil
}

func splitHosts(s string) []string {
	var out []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
