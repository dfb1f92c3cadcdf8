// Package config manages the nodeboard configuration file.
//
// The configuration is a versioned YAML file stored in the platform
// configuration directory:
//   - Linux: $XDG_CONFIG_HOME/nodeboard/config.yaml or $HOME/.config/nodeboard/config.yaml
//   - macOS: $HOME/.config/nodeboard/config.yaml
//   - Windows: %LOCALAPPDATA%\nodeboard\config.yaml
//
// NODEBOARD_CONFIG overrides the location.
//
// # Precedence
//
// Values are resolved in this order, later sources winning:
//
//  1. Built-in defaults (Default)
//  2. The config file
//  3. A .env file in the working directory (never overrides variables
//     already present in the environment)
//  4. NODEBOARD_API_URL, NODEBOARD_WEB_PORT, NODEBOARD_TIMEOUT and
//     NODEBOARD_LOG_LEVEL
//  5. Command line flags, applied by the caller
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := deviceapi.NewClientWithURL(cfg.API.BaseURL)
//	client.SetTimeout(cfg.API.Timeout)
package config
