/*
Package config loads the fxboard YAML configuration.

	log:
	  level: debug
	  json: false
	engine:
	  mode: websocket          # or loopback
	  url: ws://127.0.0.1:9000/engine
	  inDevice: hw:CODEC
	  outDevice: hw:CODEC
	  dialTimeout: 5s
	  sendBuffer: 64
	storage:
	  backend: bolt            # or redis
	  dataDir: /var/lib/fxboard
	  redis:
	    addr: 127.0.0.1:6379
	    db: 0
	    prefix: fxboard
	metrics:
	  enabled: true
	  addr: 127.0.0.1:9090

Every key is optional; missing keys keep the values from Default.
*/
package config
