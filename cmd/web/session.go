package main

// gameIDSessionKey stores the id of the game in the browser session.
const gameIDSessionKey = "gameID"
