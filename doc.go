// Package blog is a blogging API: accounts with bearer tokens,
// categories, posts with optional images, comments and likes.
//
// Services:
//   - AuthService registers users, issues HS256 tokens and resolves a
//     token back to its user. RequireAuth wires it into fiber through
//     the jwtware middleware and stores the user in the request context.
//   - CategoryService, PostService, CommentService and LikeService take
//     the requesting *User on every mutating call. Ownership of posts and
//     comments is checked inside the service, never by the caller.
//
// Storage:
//   - Services depend only on the store interfaces in types.go. The
//     repository package implements them on Bun (SQLite, PostgreSQL) and
//     repository/mongostore on MongoDB. Adapters translate their driver
//     errors to ErrRecordNotFound and ErrDuplicateRecord; services turn
//     those into NotFound and Conflict rich errors.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter. Services emit login,
//     content and ownership-denied events best effort, so a failing sink
//     never fails the request.
package blog
