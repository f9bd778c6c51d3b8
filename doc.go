// Package portal assembles the CureConnect medical tourism portal: the
// application core from internal, its controllers and the embedded web
// assets.
//
// A server needs only a root directory holding config.yaml (or .env values):
//
//	app, err := portal.Boot("/srv/cureconnect")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(app.Run(internal.Address(":8080")))
//
// cmd/cureconnect wraps this with flags, migrations and an offline render
// command.
package portal
