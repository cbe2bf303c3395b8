// Package videoconferenceapi implements the video-conference-api service which
// schedules one-to-one teacher/student video sessions on LiveKit.
//
// The service provides:
//   - Session scheduling with room provisioning
//   - Session lifecycle management (start, complete, cancel, remove)
//   - Participant token issuance for teachers and students
//   - LiveKit room reconciliation via polling
//   - JWT authentication via Keycloak or the auth service
package videoconferenceapi
