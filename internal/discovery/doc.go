// Package discovery finds and announces the inventory API with mDNS.
//
// The API server advertises itself as a "_nodeboard._tcp" service in the
// "local." domain. The dashboard browses for that service when no base URL
// is configured, and uses the first instance that answers.
//
// # Usage Example
//
//	// Server side
//	adv, err := discovery.Advertise("", 8081, []string{"path=/devices"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adv.Shutdown()
//
//	// Client side
//	svc, err := discovery.FindAPI(ctx, 3*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := deviceapi.NewClientWithURL(svc.BaseURL())
package discovery
