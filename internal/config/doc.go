// Package config provides configuration parsing for ima tools.
//
// The configuration is stored in ima.json, ima.yaml or ima.yml in the
// working directory. Every field is optional; missing values take the
// defaults from Default.
//
// # Configuration File Structure
//
//	engine:
//	  frameRate: 60
//	  failurePolicy: isolate
//	  textBindings: true
//	log:
//	  level: info
//	  format: auto
//	inspect:
//	  host: localhost
//	  port: 7070
//	metrics:
//	  enabled: true
//	  namespace: ima
//	publish:
//	  bucket: my-bucket
//	  prefix: renders/
//	  region: us-east-1
//	demo:
//	  cells: 100
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.Address())
package config
