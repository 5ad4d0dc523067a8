package reporters

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
)

const (
	prefixRegistered = "MB"
	prefixBackfilled = "RJ"

	idAttempts = 5
)

// Candidate builds a reporter id: prefix, the last six digits of the unix
// millisecond clock and a three digit random number.
func Candidate(prefix string, now time.Time) string {
	ms := fmt.Sprintf("%06d", now.UnixMilli()%1_000_000)
	return fmt.Sprintf("%s%s%d", prefix, ms, 100+rand.IntN(900))
}

type takenFunc func(ctx context.Context, id string) (bool, error)

// uniqueID draws candidates until one is free. After idAttempts the last
// candidate is returned as is and the unique index decides.
func uniqueID(ctx context.Context, prefix string, now func() time.Time, taken takenFunc) (string, error) {
	id := Candidate(prefix, now())
	for range idAttempts {
		used, err := taken(ctx, id)
		if err != nil {
			return "", err
		}
		if !used {
			return id, nil
		}
		id = Candidate(prefix, now())
	}
	return id, nil
}

func (s *Service) reporterIDTaken(ctx context.Context, id string) (bool, error) {
	_, err := s.users.FindByReporterID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case apperr.Is(err, apperr.KindNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("check reporter id: %w", err)
	}
}
