package main

import "net/url"

// natsHostPort strips the nats:// scheme off a NATS server URL, leaving
// the host:port a TCPChecker can dial directly.
func natsHostPort(natsURL string) string {
	u, err := url.Parse(natsURL)
	if err != nil || u.Host == "" {
		return natsURL
	}
	return u.Host
}
