// Command randomgif fetches a random GIF URL for a topic through an
// effect-carrying store and prints every state transition.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/on-the-ground/effect_ive_go/effects"
	"github.com/on-the-ground/effect_ive_go/effects/reducer"
	"github.com/on-the-ground/effect_ive_go/effects/runner"
	"github.com/on-the-ground/effect_ive_go/effects/store"
	"github.com/on-the-ground/effect_ive_go/effects/tasks"
	"github.com/rickb777/date/v2/timespan"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultAPI = "https://api.giphy.com/v1/gifs/random?api_key=dc6zaTOxFJmzC"

var rootCmd = &cobra.Command{
	Use:   "randomgif",
	Short: "Fetch a random GIF URL for a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		api, _ := cmd.Flags().GetString("api")
		verbose, _ := cmd.Flags().GetBool("verbose")

		logger := zap.NewNop()
		if verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			logger = l
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		final, err := fetchOnce(ctx, config{API: api, Topic: topic, Timeout: timeout, Logger: logger})
		if err != nil {
			return err
		}
		if final.Status != StatusSuccess {
			return fmt.Errorf("%s: %s", final.Status, final.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().String("topic", "food", "Tag of the random GIF")
	rootCmd.Flags().Duration("timeout", 10*time.Second, "Give up after this long")
	rootCmd.Flags().String("api", defaultAPI, "Random GIF endpoint")
	rootCmd.Flags().BoolP("verbose", "v", false, "Log store activity")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type config struct {
	API     string
	Topic   string
	Timeout time.Duration
	Logger  *zap.Logger
	Client  *http.Client
}

// fetchOnce dispatches Fetch and blocks until the store leaves the pending
// status. Tasks still running by then are cancelled and joined.
func fetchOnce(ctx context.Context, cfg config) (State, error) {
	s, teardown := effects.Start(ctx, update, State{Status: StatusNotStarted}, effects.Options[Msg, Task]{
		Runner: newRunner(cfg.API, cfg.Client),
		Logger: cfg.Logger,
	}, store.WithLogging[State, Msg](cfg.Logger))
	defer teardown()

	settled := make(chan State, 1)
	s.Subscribe(func() {
		st := s.GetState()
		fmt.Println(st)
		if st.Status != StatusPending {
			select {
			case settled <- st:
			default:
			}
		}
	})

	s.Dispatch(Fetch{Topic: cfg.Topic, Timeout: cfg.Timeout})

	select {
	case st := <-settled:
		return st, nil
	case <-ctx.Done():
		return s.GetState(), ctx.Err()
	}
}

func newRunner(api string, client *http.Client) runner.Runner[Task, Msg] {
	return runner.Match(
		runner.Typed[Task](runner.Func(
			func(ctx context.Context, t GetRandomGif) (Msg, error) {
				fetch := tasks.Decode(tasks.HTTPGet(client, gifURL(api, t.Topic)), decodeGifURL)
				image, err := fetch(ctx)
				if err != nil {
					return nil, err
				}
				return t.OnSuccess(image), nil
			},
			func(t GetRandomGif, err error) Msg { return t.OnFail(err) },
		)),
		runner.Typed[Task](tasks.RunDelay[Msg]()),
	)
}

func gifURL(api, topic string) string {
	u, err := url.Parse(api)
	if err != nil {
		return api
	}
	q := u.Query()
	q.Set("tag", topic)
	u.RawQuery = q.Encode()
	return u.String()
}

type gifResponse struct {
	Data struct {
		ImageURL string `json:"image_url"`
	} `json:"data"`
}

func decodeGifURL(r gifResponse) (string, error) {
	if r.Data.ImageURL == "" {
		return "", fmt.Errorf("response has no image url")
	}
	return r.Data.ImageURL, nil
}

// Status of the fetch state machine.
type Status string

const (
	StatusNotStarted Status = "not started"
	StatusPending    Status = "pending"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

type State struct {
	Status Status
	URL    string
	Reason string
	// attempt discards late results of an earlier Fetch.
	attempt int
}

func (s State) String() string {
	switch s.Status {
	case StatusSuccess:
		return fmt.Sprintf("status: %s\nurl: %s", s.Status, s.URL)
	case StatusError:
		return fmt.Sprintf("status: %s\nreason: %s", s.Status, s.Reason)
	default:
		return fmt.Sprintf("status: %s", s.Status)
	}
}

type Msg any

type Fetch struct {
	Topic   string
	Timeout time.Duration
}

type FetchSuccess struct {
	Attempt int
	URL     string
}

type FetchError struct {
	Attempt int
	Err     error
}

type TimedOut struct {
	Attempt int
	After   time.Duration
}

type Task any

type GetRandomGif struct {
	Topic     string
	OnSuccess func(url string) Msg
	OnFail    func(err error) Msg
}

func update(s State, m Msg) reducer.Result[State, Task] {
	switch m := m.(type) {
	case Fetch:
		attempt := s.attempt + 1
		next := State{Status: StatusPending, attempt: attempt}
		get := GetRandomGif{
			Topic:     m.Topic,
			OnSuccess: func(url string) Msg { return FetchSuccess{Attempt: attempt, URL: url} },
			OnFail:    func(err error) Msg { return FetchError{Attempt: attempt, Err: err} },
		}
		if m.Timeout <= 0 {
			return reducer.Effect[State, Task](next, get)
		}
		timeout := tasks.Delay[Msg]{
			After: m.Timeout,
			Then: func(waited timespan.TimeSpan) Msg {
				return TimedOut{Attempt: attempt, After: waited.Duration()}
			},
		}
		return reducer.Effect[State, Task](next, get, timeout)
	case FetchSuccess:
		if s.Status != StatusPending || m.Attempt != s.attempt {
			return reducer.State[State, Task](s)
		}
		return reducer.State[State, Task](State{Status: StatusSuccess, URL: m.URL, attempt: s.attempt})
	case FetchError:
		if s.Status != StatusPending || m.Attempt != s.attempt {
			return reducer.State[State, Task](s)
		}
		return reducer.State[State, Task](State{Status: StatusError, Reason: m.Err.Error(), attempt: s.attempt})
	case TimedOut:
		if s.Status != StatusPending || m.Attempt != s.attempt {
			return reducer.State[State, Task](s)
		}
		return reducer.State[State, Task](State{
			Status:  StatusError,
			Reason:  fmt.Sprintf("timed out after %s", m.After),
			attempt: s.attempt,
		})
	default:
		return reducer.State[State, Task](s)
	}
}
