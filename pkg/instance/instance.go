package instance

import "github.com/angelmondragon/basket-engine/pkg/env"

// GetID returns the process identifier used in startup logs. Heroku style
// dyno names win over INSTANCE_ID.
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	return env.Get("INSTANCE_ID", "local")
}
