package main

import (
	"net/http"
	"time"
)

// timeoutBody is served without the nonce, so it carries no scripts.
const timeoutBody = `<!DOCTYPE html>
<html lang="en">
<head><title>Timeout · Representative Quiz</title></head>
<body>
<h1>The quiz took too long to respond</h1>
<p>Your game is kept. <a href="/">Back to the quiz</a></p>
</body>
</html>
`

// timeoutHandler answers 503 Service Unavailable when h misses the deadline. The deadline is a bit shorter than
// serverTimeout so the response is written before the server gives up on the connection.
func timeoutHandler(h http.Handler, serverTimeout time.Duration) http.Handler {
	return http.TimeoutHandler(h, serverTimeout-500*time.Millisecond, timeoutBody) //nolint:mnd // 500ms
}
