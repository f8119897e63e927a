package domain

type Route string

const (
	RouteLogin    Route = "login"
	RouteHome     Route = "home"
	RouteNoChange Route = "no_change"
)
