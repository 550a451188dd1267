// Package config loads yildiz profile files.
//
// A profile file names one or more servers and tenants. It may be written
// in YAML or JSON and is checked against an embedded JSON Schema before it
// is decoded:
//
//	defaultProfile: local
//	logLevel: info
//	profiles:
//	  local:
//	    host: localhost
//	    port: 3058
//	    prefix: dev
//	  production:
//	    proto: https
//	    host: yildiz.example.com
//	    port: 443
//	    prefix: tenant-a
//	    token: secret
//	    timeoutMs: 2000
//
// Basic Usage:
//
//	file, err := config.Load("yildiz.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	profile, err := file.Profile("production")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := yildiz.New(profile.TransportConfig())
package config
