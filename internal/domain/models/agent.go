package models

// Gender of an agent persona, used by the widget to pick pronouns and avatars.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// AgentProfile describes a support agent persona from the fixed roster.
// Profiles are immutable; sessions keep a reference to one.
type AgentProfile struct {
	ID            string `json:"id" bson:"id"`
	Name          string `json:"name" bson:"name"`
	LocalizedName string `json:"localizedName" bson:"localizedName"`
	AvatarRef     string `json:"avatarRef" bson:"avatarRef"`
	Gender        Gender `json:"gender" bson:"gender"`
}
