package game

// ScoreEntry is one row of a score table snapshot.
type ScoreEntry struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
}

// ScoreTable accumulates points per participant and remembers insertion order,
// which is also the winner tie-break order.
type ScoreTable struct {
	order  []string
	names  map[string]string
	points map[string]int
}

func newScoreTable() *ScoreTable {
	return &ScoreTable{
		names:  make(map[string]string),
		points: make(map[string]int),
	}
}

func (t *ScoreTable) Ensure(id, name string) {
	if _, ok := t.points[id]; ok {
		return
	}
	t.order = append(t.order, id)
	t.names[id] = name
	t.points[id] = 0
}

func (t *ScoreTable) Add(id string, points int) int {
	if _, ok := t.points[id]; !ok {
		t.order = append(t.order, id)
	}
	t.points[id] += points
	return t.points[id]
}

func (t *ScoreTable) Get(id string) int {
	return t.points[id]
}

func (t *ScoreTable) Entries() []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(t.order))
	for _, id := range t.order {
		entries = append(entries, ScoreEntry{
			ParticipantID: id,
			Name:          t.names[id],
			Score:         t.points[id],
		})
	}
	return entries
}

// FirstAtOrAbove returns the earliest-inserted participant with at least threshold points.
func (t *ScoreTable) FirstAtOrAbove(threshold int) (ScoreEntry, bool) {
	for _, id := range t.order {
		if t.points[id] >= threshold {
			return ScoreEntry{ParticipantID: id, Name: t.names[id], Score: t.points[id]}, true
		}
	}
	return ScoreEntry{}, false
}
