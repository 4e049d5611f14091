package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"parlor/domain"
	"parlor/internal"
	"parlor/lobby"
	"parlor/session"
	"parlor/transport"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	APIBaseURL  string `env:"API_URL,default=http://localhost:8000"`
	RedisURL    string `env:"REDIS_URL,default=redis://localhost:6379"`
	TokenSecret string `env:"TOKEN_SECRET,required=true"`
	Identity    string `env:"CHAT_USERNAME,required=true"`
	Room        string `env:"CHAT_ROOM"`
	LogLevel    string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the lobby, the room session lifecycle and the interactive
// send loop. This pattern ensures clean resource management and error
// propagation.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := internal.NewLogger(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := lobby.NewClient(config.APIBaseURL, 10*time.Second)
	stdin := bufio.NewScanner(os.Stdin)

	// 3. Lobby: show what exists, pick or create a room.
	if rooms, err := api.ListRooms(ctx); err != nil {
		color.Warn.Println("Could not reach the lobby:", err)
	} else {
		renderRooms(rooms)
	}

	room := config.Room
	for room == "" {
		fmt.Print("Room name: ")
		if !stdin.Scan() {
			return exitOK, nil
		}
		room = stdin.Text()
	}
	if err := api.CreateRoom(ctx, room); err != nil {
		return exitRuntime, fmt.Errorf("could not create room %q: %w", room, err)
	}

	token, err := api.CreateToken(ctx, room, config.Identity)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not obtain token: %w", err)
	}

	// 4. Join the room over the realtime transport.
	dialer, err := transport.NewRedisDialer(config.RedisURL, []byte(config.TokenSecret), log)
	if err != nil {
		return exitRuntime, fmt.Errorf("transport setup failed: %w", err)
	}

	ctrl, err := session.Connect(ctx, session.Config{
		Token:     token,
		Room:      room,
		Identity:  config.Identity,
		Dialer:    dialer,
		Completer: api,
		Log:       log,
	})
	if err != nil {
		return exitRuntime, err
	}
	// Defer ensures the room is left on every exit path.
	defer ctrl.Leave()

	// 5. Seed the timeline; a missing history is just an empty room.
	if history, err := api.History(ctx, room); err != nil {
		log.Warn("history unavailable, starting empty", "room", room, "error", err)
	} else {
		ctrl.LoadHistory(history)
	}

	color.Bold.Printf(">>> Joined %q as %s (Ctrl+C or /quit to leave, /who for the roster)\n", room, config.Identity)

	// 6. Render new timeline entries as they land.
	go renderLoop(ctx, ctrl, config.Identity)

	// 7. Interactive send loop.
	lines := make(chan string)
	go func() {
		defer close(lines)
		for stdin.Scan() {
			lines <- stdin.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			color.Bold.Println("Leaving room...")
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			switch line {
			case "/quit":
				return exitOK, nil
			case "/who":
				for _, p := range ctrl.Participants() {
					marker := ""
					if p.IsLocal {
						marker = " (you)"
					}
					color.Gray.Printf("  %s%s\n", p.Identity, marker)
				}
			default:
				ctrl.SendMessage(ctx, line)
			}
		}
	}
}

func renderRooms(rooms []lobby.Room) {
	if len(rooms) == 0 {
		color.Gray.Println("No rooms yet.")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Participants"})
	for _, r := range rooms {
		table.Append([]string{r.Name, strconv.Itoa(r.NumParticipants)})
	}
	table.Render()
}

// renderLoop prints entries appended since the previous tick. The
// snapshot is append-only, so a length watermark is enough.
func renderLoop(ctx context.Context, ctrl *session.Controller, local string) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var printed int
	var typingShown bool
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			entries := ctrl.Timeline()
			for ; printed < len(entries); printed++ {
				printEntry(entries[printed], local)
			}
			if typing := ctrl.AssistantTyping(); typing != typingShown {
				typingShown = typing
				if typing {
					color.Gray.Println("AI Assistant is typing...")
				}
			}
		}
	}
}

func printEntry(e domain.Entry, local string) {
	ts := e.At.Format(time.TimeOnly)
	switch {
	case e.IsAssistant:
		color.Cyan.Printf("[%s] %s: %s\n", ts, e.Sender, e.Text)
	case e.Sender == local:
		color.Green.Printf("[%s] %s: %s\n", ts, e.Sender, e.Text)
	default:
		fmt.Printf("[%s] %s: %s\n", ts, e.Sender, e.Text)
	}
}
