package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/hook"
	"github.com/dsx-project/dsx/pkg/lib/backoff"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/realtime"
)

const (
	watchLong = `Open a websocket to the instance and print every frame it sends, one JSON
object per line. With --uuid the socket is bound to that document, which is
marked connected while the watch runs and disconnected when it stops.`

	watchExample = `  # Follow every change
  dsx watch

  # Follow changes while keeping document k1 online
  dsx watch --uuid k1`

	minReconnectDelay = 500 * time.Millisecond
	maxReconnectDelay = 30 * time.Second
)

// WatchOptions is a struct to support watch command
type WatchOptions struct {
	Key       string
	Reconnect bool
}

// NewWatchOptions returns initialized Options
func NewWatchOptions() *WatchOptions {
	return &WatchOptions{Reconnect: true}
}

func NewCmd() *cobra.Command {
	o := NewWatchOptions()
	watchCmd := &cobra.Command{
		Use:     "watch",
		Short:   "Stream realtime frames from an instance",
		Long:    watchLong,
		Example: watchExample,
		Args:    cobra.NoArgs,
		PreRun:  hook.ApplyPorcelainLogLevel,
		RunE:    o.run,
	}
	watchCmd.Flags().StringVar(&o.Key, "uuid", o.Key, "Bind the socket to this document key.")
	watchCmd.Flags().BoolVar(&o.Reconnect, "reconnect", o.Reconnect, "Reconnect when the socket drops.")
	return watchCmd
}

func (o *WatchOptions) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	api, cfg, err := util.GetAPIClient(cmd)
	if err != nil {
		return err
	}
	events := models.NewEventNames(cfg.Resource.Model)
	retry := backoff.NewExponential(minReconnectDelay, maxReconnectDelay)

	for attempt := 0; ; attempt++ {
		retry.Backoff(ctx, attempt)
		if ctx.Err() != nil {
			return nil
		}
		streamed, err := o.stream(ctx, cmd, api.SocketURL(), events)
		if ctx.Err() != nil {
			return nil
		}
		if !o.Reconnect {
			return err
		}
		if streamed {
			attempt = 0
		}
		log.Ctx(ctx).Warn().Err(err).Msg("socket closed, reconnecting")
	}
}

// stream prints frames until the socket or ctx closes. It reports whether
// at least one frame arrived so that the caller can reset its backoff.
func (o *WatchOptions) stream(
	ctx context.Context, cmd *cobra.Command, url string, events models.EventNames) (bool, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer ws.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = ws.Close()
	})
	defer stop()

	if o.Key != "" {
		frame, err := realtime.NewFrame(events.ConnectRequest, o.Key)
		if err != nil {
			return false, err
		}
		if err := ws.WriteJSON(frame); err != nil {
			return false, fmt.Errorf("failed to send %s: %w", events.ConnectRequest, err)
		}
	}

	streamed := false
	encoder := json.NewEncoder(cmd.OutOrStdout())
	for {
		var frame realtime.Frame
		if err := ws.ReadJSON(&frame); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return streamed, nil
			}
			return streamed, err
		}
		streamed = true
		if err := encoder.Encode(frame); err != nil {
			return streamed, err
		}
	}
}
