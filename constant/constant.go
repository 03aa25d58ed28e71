package constant

type MediaStatus string

const (
	MediaStatusPending    MediaStatus = "PENDING"
	MediaStatusProcessing MediaStatus = "PROCESSING"
	MediaStatusCompleted  MediaStatus = "COMPLETED"
	MediaStatusFailed     MediaStatus = "FAILED"
)

func (s MediaStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known media statuses.
func (s MediaStatus) Valid() bool {
	switch s {
	case MediaStatusPending, MediaStatusProcessing, MediaStatusCompleted, MediaStatusFailed:
		return true
	}
	return false
}

type EventType string

const (
	EventTypeCreated       EventType = "Created"
	EventTypeUpdated       EventType = "Updated"
	EventTypeStarted       EventType = "Started"
	EventTypeEnded         EventType = "Ended"
	EventTypeMediaUploaded EventType = "MEDIA_UPLOADED"
)

func (e EventType) String() string {
	return string(e)
}

type AggregateType string

const (
	AggregateTypeMeeting      AggregateType = "Meeting"
	AggregateTypeMessage      AggregateType = "Message"
	AggregateTypeAudioMessage AggregateType = "AudioMessage"
	AggregateTypeVoiceSession AggregateType = "VoiceSession"
	AggregateTypeMeetingMedia AggregateType = "MeetingMedia"
)

func (a AggregateType) String() string {
	return string(a)
}

const (
	TopicRawAudio      = "raw-audio-events"
	TopicMeeting       = "meeting-events"
	TopicVoiceSession  = "voice-session-events"
	TopicTextMessage   = "text-message-events"
	TopicMediaUploaded = "media-uploaded-events"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
