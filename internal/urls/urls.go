package urls

// Documentation URLs for guides and troubleshooting
// All URLs point to the documentation site at https://muurk.github.io/nodeboard/

// Repository is the project source repository
const Repository = "github.com/muurk/nodeboard"

// GettingStarted is the quick start guide for running the API and a dashboard
const GettingStarted = "https://muurk.github.io/nodeboard/getting-started/"

// TroubleshootingGuide covers dashboards that cannot reach the inventory API,
// including mDNS discovery on segmented networks.
const TroubleshootingGuide = "https://muurk.github.io/nodeboard/troubleshooting/"

// SeedFileFormat documents the YAML inventory accepted by nodeboard-api --seed
const SeedFileFormat = "https://muurk.github.io/nodeboard/reference/seed-file/"

// CheckMethods explains how Http, Ping and SipPing interfaces are probed,
// including the privileges ICMP needs on each platform.
const CheckMethods = "https://muurk.github.io/nodeboard/reference/check-methods/"
