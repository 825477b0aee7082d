// Package config manages user-level settings stored at ~/.fmigen/config.yaml
// and FMIGEN_* environment variables: the template directory override, the
// trash location, the shell used for test builds, and logging options.
package config
