package game

// Status is the room lifecycle state.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

type Stats struct {
	Rooms        int `json:"rooms"`
	Waiting      int `json:"waiting"`
	Playing      int `json:"playing"`
	Finished     int `json:"finished"`
	Participants int `json:"participants"`
}
