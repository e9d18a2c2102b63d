package main

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"dmchat/composer"
	"dmchat/domain"
	"dmchat/internal"
	"dmchat/moderation"
	"dmchat/notify"
	"dmchat/observability"
	"dmchat/projection"
	"dmchat/repositories"
	"dmchat/runtime"
	"dmchat/runtime/workers"
	"dmchat/session"
)

//go:embed censored/*
var censoredFS embed.FS

const baseTitle = "dmchat"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages their lifecycle, and centralizes
// error reporting so deferred cleanup always executes before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Storage, monitoring and the hub
	messageRepository := repositories.NewMessageRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	monitor := observability.NewMonitor(log)
	hub := runtime.NewHub(log, messageRepository, userRepository, monitor, config.BufferSize)

	// 4. Session
	provider := session.NewProvider(log, userRepository, config.AuthTokenDuration)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = provider.SignIn(ctx, config.Username, config.Password); err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	self, err := provider.Current(ctx)
	if err != nil {
		return err
	}

	// 5. Moderation
	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	censoredData, err := moderation.NewCensoredLoader(censoredFS).LoadAll("censored")
	if err != nil {
		return fmt.Errorf("loading censored words failed: %w", err)
	}
	log.Info("Censored dictionaries loaded",
		"languages", censoredData.Languages, "words", len(censoredData.Words))
	moderator, err := moderation.NewModerator(censoredData.Words, replacement)
	if err != nil {
		return err
	}

	// 6. Workers under supervision
	sup := workers.NewSupervisor(log)
	sup.Add(
		runtime.NewDispatchWorker(hub, log),
		runtime.NewRefreshWorker(hub, log, config.DirectoryRefreshInterval),
	)
	go sup.Run(ctx)
	defer sup.Stop()

	// 7. Projections and notifications
	view := projection.NewConversationView(log, self, hub, func(contact domain.User, messages []domain.Message) {
		renderThread(self, contact, messages)
	})
	defer view.Close()

	var sidebar *projection.Sidebar
	sidebar = projection.NewSidebar(log, self, hub, hub, view, func(contacts []domain.User) {
		selectedUID := ""
		if contact, ok := view.Selected(); ok {
			selectedUID = contact.UID
		}
		renderContacts(contacts, sidebar.Preview, selectedUID)
	})
	defer sidebar.Close()

	controller := notify.NewController(log, self, &terminalNotifier{}, bellPlayer{},
		monitor, baseTitle, func(title string) {
			fmt.Fprintf(os.Stdout, "== %s ==\n", title)
		})
	controller.Start(hub)
	defer controller.Close()

	// 8. Debug server
	internal.StartDebugServer(db, config.DebugPort, "/inspect", nil, monitor.Snapshot)

	sidebar.Start()
	hub.RefreshDirectory()

	send := composer.NewComposer(log, self, hub, view, &moderator)

	// 9. Command loop
	errChan := make(chan error, 1)
	go func() {
		errChan <- commandLoop(ctx, commandDeps{
			view:       view,
			sidebar:    sidebar,
			controller: controller,
			send:       send,
			self:       self,
		})
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	log.Info("Program stopped cleanly")
	return nil
}

type commandDeps struct {
	view       *projection.ConversationView
	sidebar    *projection.Sidebar
	controller *notify.Controller
	send       *composer.Composer
	self       domain.Identity
}

// commandLoop reads stdin line by line. Slash commands drive the view,
// anything else is sent as a text message to the open conversation.
func commandLoop(ctx context.Context, deps commandDeps) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(os.Stdout, "Commands: /contacts /select <name> /file <path> /focus /blur /quit")

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			return nil
		case line == "/contacts":
			selectedUID := ""
			if contact, ok := deps.view.Selected(); ok {
				selectedUID = contact.UID
			}
			renderContacts(deps.sidebar.Contacts(), deps.sidebar.Preview, selectedUID)
		case line == "/focus":
			deps.controller.SetVisible(true)
		case line == "/blur":
			deps.controller.SetVisible(false)
		case strings.HasPrefix(line, "/select "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "/select "))
			contact, ok := findContact(deps.sidebar.Contacts(), name)
			if !ok {
				fmt.Fprintf(os.Stdout, "No contact named %q\n", name)
				continue
			}
			deps.view.Select(contact)
		case strings.HasPrefix(line, "/file "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/file "))
			if err := sendFile(ctx, deps.send, path); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			}
		default:
			if err := deps.send.SendText(ctx, line); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			}
		}
	}
	return scanner.Err()
}

func sendFile(ctx context.Context, send *composer.Composer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	return send.SendFile(ctx, name, data, "")
}

func findContact(contacts []domain.User, name string) (domain.User, bool) {
	for _, contact := range contacts {
		if strings.EqualFold(contact.Username, name) {
			return contact, true
		}
	}
	return domain.User{}, false
}
