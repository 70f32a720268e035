/*
Package ports defines the driven ports (interfaces) of the API.

These interfaces decouple the request handlers from external systems, so the
same handler runs against SQLite or an in-memory store, ClickHouse or a
local log, the Lens API or a test double.

# Key Interfaces

  - PollStore, PreferenceStore: relational persistence.
  - EventSink, RecentEvents, Broadcaster: the Leafwatch analytics path.
  - GeoLocator: IP to coarse location.
  - AccountVerifier, FrameSigner: the Lens API.
  - SignupNotifier, Claimer: the signup webhook.
*/
package ports
