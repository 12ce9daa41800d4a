// Package main writes a development CA and a server certificate for running
// the ProfileDesk API over HTTPS:
//
//	certgen -out certs -hosts localhost,127.0.0.1
//	server -tls-cert certs/server.crt -tls-key certs/server.key
//	client -ca certs/ca.crt -url https://localhost:8080 ...
//
// An existing certs/ca.crt and certs/ca.key pair is reused.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/ProfileDesk/internal/certgen"
)

func main() {
	var (
		out   string
		hosts string
	)
	flag.StringVar(&out, "out", "certs", "output directory")
	flag.StringVar(&hosts, "hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	if err := run(out, strings.Split(hosts, ","), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(dir string, hosts []string, w io.Writer) error {
	var names []string
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}

	caCert, caKey := filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key")
	ca, err := certgen.LoadAuthority(caCert, caKey)
	switch {
	case err == nil:
		fmt.Fprintf(w, "Reusing CA from %s\n", caCert)
	case errors.Is(err, os.ErrNotExist):
		if ca, err = certgen.NewAuthority("ProfileDesk Dev CA"); err != nil {
			return err
		}
		if err := ca.PEM.Write(dir, "ca"); err != nil {
			return err
		}
	default:
		return err
	}

	server, err := ca.IssueServer(names)
	if err != nil {
		return err
	}
	if err := server.Write(dir, "server"); err != nil {
		return err
	}

	fmt.Fprintf(w, "Certificates for %s generated into %s\n", strings.Join(names, ", "), dir)
	return nil
}
