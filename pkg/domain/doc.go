/*
Package domain contains the request and record types shared by the API.

The types here are plain values: they carry no I/O and no persistence
logic, so handlers, stores and remote clients can exchange them freely.

# Key Entities

  - Identity: the actor decoded from a session token.
  - FrameActionRequest, FrameAction, Frame: the interactive card flow.
  - Poll, PollOption, Preference: records kept by the relational store.
  - Event: a Leafwatch analytics row.
  - OEmbed: link preview metadata scraped from a page.
*/
package domain
