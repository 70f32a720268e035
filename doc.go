/*
Package goodapi is the backend of the Goodcast client.

It authenticates requests against the Lens API and serves:

  - the frame proxy, which signs a button click with the viewer's Lens
    session, forwards it to the frame server and parses the next frame;
  - Leafwatch, the analytics pipeline that validates events against a
    tracking catalog, enriches them and streams them to live viewers;
  - polls, profile preferences and the signup webhook.

# Usage

The App type wires every adapter from a config.Config:

	cfg, err := config.Load("goodapi.yaml")
	if err != nil {
		log.Fatal(err)
	}
	app, err := goodapi.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Fatal(err)
	}

Redis and ClickHouse are optional: without them the recent-events window,
webhook dedupe and event sink fall back to in-process memory.
*/
package goodapi
