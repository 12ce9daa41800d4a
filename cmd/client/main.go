// Package main is the ProfileDesk command-line client. It registers
// dashboard accounts and runs the onboarding wizard against the API.
package main

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/atinyakov/ProfileDesk/internal/client/api"
	"github.com/atinyakov/ProfileDesk/internal/client/tracker"
	"github.com/atinyakov/ProfileDesk/internal/logger"
	"github.com/atinyakov/ProfileDesk/internal/models"
)

var (
	version   string
	buildDate string
)

const requestTimeout = 15 * time.Second

// main parses command-line flags and dispatches to the register or wizard commands.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("ignoring .env: %v", err)
	}

	var (
		cmd      string
		baseURL  string
		caFile   string
		token    string
		userID   string
		role     string
		logLevel string
		showVer  bool
	)

	flag.StringVar(&cmd, "cmd", "", "command: register | wizard")
	flag.StringVar(&baseURL, "url", cmp.Or(os.Getenv("PROFILEDESK_URL"), "http://localhost:8080"), "server base URL")
	flag.StringVar(&caFile, "ca", os.Getenv("PROFILEDESK_CA"), "path to CA cert for HTTPS servers")
	flag.StringVar(&token, "token", os.Getenv("PROFILEDESK_TOKEN"), "bearer token")
	flag.StringVar(&userID, "user", os.Getenv("PROFILEDESK_USER"), "user ID")
	flag.StringVar(&role, "role", string(models.RoleInfluencer), "role for registration: admin | vendor | influencer")
	flag.StringVar(&logLevel, "log-level", "warn", "log level")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("ProfileDesk Client\nVersion: %s\nBuild Date: %s\n",
			cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	l := logger.New()
	if err := l.Init(logLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = l.Log.Sync() }()

	httpClient, err := api.NewHTTPClient(caFile, requestTimeout)
	if err != nil {
		log.Fatal(err)
	}
	client := api.NewClient(httpClient, baseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "register":
		reg, err := client.Register(ctx, models.Role(role))
		if err != nil {
			log.Fatal(err)
		}
		b, _ := json.MarshalIndent(reg, "", "  ")
		fmt.Println(string(b))
		fmt.Printf("export PROFILEDESK_USER=%s PROFILEDESK_TOKEN=%s\n", reg.UserID, reg.Token)
	case "wizard":
		if token == "" || userID == "" {
			log.Fatal("please provide -token and -user (or PROFILEDESK_TOKEN and PROFILEDESK_USER)")
		}
		creds := models.Credentials{Token: token, UserID: userID}

		tr := tracker.New(client, creds, l.Log)
		defer tr.Close()
		<-tr.Mount(ctx)

		w := &wizard{tracker: tr, saver: client, creds: creds, out: os.Stdout, log: l.Log}
		w.printStatus()
		w.run(ctx, os.Stdin)
	default:
		l.Log.Error("unknown command", zap.String("cmd", cmd))
		log.Fatalf("unknown command: %s", cmd)
	}
}
