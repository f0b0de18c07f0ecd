package daily

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/scores"
	"github.com/robalobadob/arcade/internal/session"
)

const lossTimeout = 5 * time.Second

// Recorder returns a scores.Recorder that also stores each recorded score as
// the player's daily result before passing it on to next.
func (s *Store) Recorder(next scores.Recorder, playerID, date string) scores.Recorder {
	return &recorder{store: s, next: next, player: playerID, date: date}
}

type recorder struct {
	store  *Store
	next   scores.Recorder
	player string
	date   string
}

func (r *recorder) Record(ctx context.Context, e scores.Entry) error {
	if err := r.store.InsertResult(ctx, Result{PlayerID: r.player, Date: r.date, Title: e.Title, Raw: e.Raw}); err != nil {
		return err
	}
	if r.next == nil {
		return nil
	}
	return r.next.Record(ctx, e)
}

func (r *recorder) History(ctx context.Context, title string, descending bool) ([]scores.Entry, error) {
	if r.next == nil {
		return nil, nil
	}
	return r.next.History(ctx, title, descending)
}

// LossWatcher returns a session listener that stores a lost game as the
// player's daily result, so a loss uses up the day just like a win.
func (s *Store) LossWatcher(playerID, date, title string) session.Listener {
	return session.ListenerFunc(func(_, to session.State) {
		if to != session.Lose {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), lossTimeout)
		defer cancel()
		r := Result{PlayerID: playerID, Date: date, Title: title, Lost: true}
		if err := s.InsertResult(ctx, r); err != nil {
			log.Warn().Err(err).Str("game", title).Msg("record daily loss")
		}
	})
}
