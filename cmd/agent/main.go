// The agent is the client side of the tracking service: in worker mode it
// runs the clock-in/clock-out session with simulated GPS sampling, in
// observer mode it follows the push channel like a manager's dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"worktrack-backend/internal/client"
	"worktrack-backend/internal/location"
	"worktrack-backend/internal/models"
	"worktrack-backend/internal/session"
)

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "base URL of the worktrack server")
		username = flag.String("username", "", "account username")
		password = flag.String("password", "", "account password")
		mode     = flag.String("mode", "worker", "worker or observer")
		duration = flag.Duration("duration", 30*time.Second, "how long to stay clocked in (worker mode)")
		lat      = flag.Float64("lat", 37.3329, "starting latitude for the simulated GPS feed")
		lng      = flag.Float64("lng", -121.8866, "starting longitude for the simulated GPS feed")
	)
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("❌ -username and -password are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := client.Login(ctx, *server, *username, *password)
	if err != nil {
		log.Fatalf("❌ Login failed: %v", err)
	}
	log.Printf("✅ Logged in as %s (%s)", result.User.Username, result.User.UserType)

	switch *mode {
	case "worker":
		runWorker(ctx, *server, result.User.Username, *duration, *lat, *lng)
	case "observer":
		runObserver(ctx, *server)
	default:
		log.Fatalf("❌ Unknown mode: %s", *mode)
	}
}

func runWorker(ctx context.Context, server, username string, duration time.Duration, lat, lng float64) {
	submitter := client.NewSubmitter(server)

	source := location.NewSimSource(lat, lng, time.Now().UnixNano())
	sampler := location.NewSampler(source, location.DefaultInterval,
		func(pos models.Location) {
			log.Printf("📍 Position: %.5f, %.5f", pos.Latitude, pos.Longitude)
		},
		func(ctx context.Context, pos models.Location) error {
			return submitter.SubmitSnapshot(ctx, username, nil, &pos)
		},
	)

	timer := session.New(username, sampler,
		func(ctx context.Context, workingTime *int64, loc *models.Location) error {
			return submitter.SubmitSnapshot(ctx, username, workingTime, loc)
		},
	)

	displayCtx, stopDisplay := context.WithCancel(ctx)
	defer stopDisplay()
	go timer.RunDisplay(displayCtx, func(date, clock string) {
		fmt.Printf("\r🕒 %s  %s ", date, clock)
	})

	if err := timer.ClockIn(ctx); err != nil {
		log.Printf("⚠️ Clock-in: %v", err)
	}

	select {
	case <-ctx.Done():
		log.Println("⚠️ Interrupted, clocking out...")
	case <-time.After(duration):
	}

	// Clock-out must finish even when the signal context is already gone
	elapsed, err := timer.ClockOut(context.Background())
	if err != nil {
		log.Fatalf("❌ Clock-out failed: %v", err)
	}
	fmt.Println()
	log.Printf("✅ Worked for %s", formatElapsed(elapsed))

	if err := timer.Reset(); err != nil {
		log.Printf("❌ Reset failed: %v", err)
	}
}

func runObserver(ctx context.Context, server string) {
	wsURL := strings.Replace(server, "http", "ws", 1) + "/ws"

	listener := client.NewPushListener(wsURL, func(records models.RecordMap) {
		usernames := make([]string, 0, len(records))
		for username := range records {
			usernames = append(usernames, username)
		}
		sort.Strings(usernames)

		log.Printf("📋 %d worker(s):", len(records))
		for _, username := range usernames {
			record := records[username]
			line := "   " + username + ": "
			if record.WorkingTime != nil {
				line += "worked " + formatElapsed(*record.WorkingTime)
			} else {
				line += "session in progress"
			}
			if record.Location != nil {
				line += fmt.Sprintf(" @ %.5f, %.5f", record.Location.Latitude, record.Location.Longitude)
			}
			log.Println(line)
		}
	})

	listener.Run(ctx)
}

func formatElapsed(seconds int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
