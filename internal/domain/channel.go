package domain

// Channel identifies how an incident was reported.
type Channel string

const (
	ChannelWeb    Channel = "web"
	ChannelMobile Channel = "mobile"
)
