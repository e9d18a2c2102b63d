package projection

import (
	"sort"

	"dmchat/domain"

	"github.com/samber/lo"
)

// BuildThread filters a full log snapshot down to the messages of one
// conversation, ordered ascending by send time. The sort is stable, so two
// messages stamped at the same instant keep their log order.
func BuildThread(pair domain.Pair, snapshot []domain.Message) []domain.Message {
	relevant := lo.Filter(snapshot, func(m domain.Message, _ int) bool {
		return pair.Matches(m)
	})
	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].SentAt.Before(relevant[j].SentAt)
	})
	return relevant
}

// LatestRelevant returns the most recent message of one conversation, or
// false if none exists. On equal timestamps the earliest log entry wins,
// like the original preview scan.
func LatestRelevant(pair domain.Pair, snapshot []domain.Message) (domain.Message, bool) {
	relevant := lo.Filter(snapshot, func(m domain.Message, _ int) bool {
		return pair.Matches(m)
	})
	if len(relevant) == 0 {
		return domain.Message{}, false
	}
	latest := lo.MaxBy(relevant, func(a, b domain.Message) bool {
		return a.SentAt.After(b.SentAt)
	})
	return latest, true
}
