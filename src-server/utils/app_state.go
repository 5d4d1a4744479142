package utils

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"pocketbot/src-server/metric"
	"pocketbot/src-server/model"
	"pocketbot/src-server/oauth"
	"pocketbot/src-server/pocket"
	"pocketbot/src-server/store"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"
)

// PocketAPI is the part of the Pocket API the bot uses.
type PocketAPI interface {
	oauth.Remote
	Retrieve(ctx context.Context, accessToken string) ([]pocket.Item, error)
	Archive(ctx context.Context, accessToken, itemID string) error
}

// AppState is the single handle every handler receives. It is built once in
// main and never replaced.
type AppState struct {
	Config    *Config
	BunDB     *bun.DB
	DgSession *discordgo.Session

	Credentials *store.CredentialStore
	Links       *store.EventLinkStore
	Pocket      PocketAPI
	Flow        *oauth.Flow
	Messenger   Messenger

	// top-level chat commands, e.g. "pocket"
	cmdHandler map[string]CmdHandler
	// called for every reaction not made by the bot itself
	reactionHandler []ReactionHandler

	startedAt          time.Time
	AppCloseSignalChan chan os.Signal
	gracefulShutdownCh chan struct{}
	shutdownOnce       sync.Once
}

func NewAppState() *AppState {
	as := &AppState{
		startedAt:          time.Now(),
		AppCloseSignalChan: make(chan os.Signal, 1),
		gracefulShutdownCh: make(chan struct{}),
	}

	// env
	as.Config = NewConfig()

	// database
	var err error
	as.BunDB, err = model.Open(as.Config.GetDatabasePath() + "?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	as.BunDB.AddQueryHook(metric.QueryHook{})

	// discord
	as.DgSession, err = discordgo.New("Bot " + as.Config.GetDiscordAppToken())
	if err != nil {
		slog.Error("cannot create discord session", "error", err)
		os.Exit(1)
	}
	as.DgSession.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessageReactions
	as.Messenger = NewDiscordMessenger(as.DgSession)

	// pocket
	as.Pocket = pocket.NewClient(
		as.Config.GetPocketConsumerKey(),
		pocket.WithBaseURL(as.Config.GetPocketBaseURL()),
		pocket.WithHTTPClient(&http.Client{
			Timeout:   30 * time.Second,
			Transport: metric.PocketTransport(http.DefaultTransport),
		}),
	)

	as.Credentials = store.NewCredentialStore(as.BunDB)
	as.Links = store.NewEventLinkStore(as.BunDB)
	as.Flow = oauth.NewFlow(as.Credentials, as.Pocket, as.Messenger, as.Config.GetWebappURL(),
		oauth.WithCommandPrefix(as.Config.GetCommandPrefix()))

	return as
}

func (as *AppState) AddCmdHandler(name string, handler CmdHandler) {
	if as.cmdHandler == nil {
		as.cmdHandler = make(map[string]CmdHandler)
	}
	as.cmdHandler[name] = handler
}

func (as *AppState) GetCmdHandler(name string) (CmdHandler, bool) {
	handler, ok := as.cmdHandler[name]
	return handler, ok
}

func (as *AppState) AddReactionHandler(handler ReactionHandler) {
	as.reactionHandler = append(as.reactionHandler, handler)
}

func (as *AppState) IterateReactionHandler(fn func(handler ReactionHandler)) {
	for _, handler := range as.reactionHandler {
		fn(handler)
	}
}

// Get the command prefix, "!" when no config is loaded
func (as *AppState) GetCommandPrefix() string {
	if as.Config == nil {
		return "!"
	}
	return as.Config.GetCommandPrefix()
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startedAt)
}

// CreateGracefulShutdownChan returns a channel closed by GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() <-chan struct{} {
	return as.gracefulShutdownCh
}

func (as *AppState) GracefulShutdown() {
	as.shutdownOnce.Do(func() {
		close(as.gracefulShutdownCh)
		if as.DgSession != nil {
			if err := as.DgSession.Close(); err != nil {
				slog.Warn("can't close discord session", "error", err)
			}
		}
		if as.BunDB != nil {
			if err := as.BunDB.Close(); err != nil {
				slog.Warn("can't close database", "error", err)
			}
		}
	})
}
