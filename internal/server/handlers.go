// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in test page.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebSocketHandler upgrades the HTTP connection to WebSocket, creates a new
// Client bound to the coordinator, and hands it to the hub, which starts
// the client's read/write pumps.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "err", err)
		return
	}

	client := NewClient(conn, s.hub, s.coordinator, r.RemoteAddr)
	if !s.hub.Register(client) {
		s.log.Warn("Hub is shut down; rejecting connection", "addr", r.RemoteAddr)
		_ = conn.Close()
	}
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Clients  int    `json:"clients"`
	Channels int    `json:"channels"`
}

// HealthHandler reports liveness with the current connection and channel counts.
func (s *Server) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Clients:  s.hub.ClientCount(),
		Channels: s.registry.Len(),
	})
}

// TestPageHandler serves an HTML page for exercising the chat protocol from
// a browser: it lists channels, connects to /ws and sends message frames.
func TestPageHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(testPageHTML))
}

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>relaychat WebSocket Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { padding: 5px; margin-right: 10px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        .status { margin: 10px 0; padding: 5px; border-radius: 3px; }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
    <h1>relaychat WebSocket Test</h1>

    <div id="status" class="status disconnected">Disconnected</div>

    <div>
        <select id="channelSelect"></select>
        <input type="text" id="userInput" placeholder="Your name">
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
    </div>

    <div id="messages"></div>

    <script>
        let ws = null;
        const messagesDiv = document.getElementById('messages');
        const channelSelect = document.getElementById('channelSelect');
        const userInput = document.getElementById('userInput');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const connectButton = document.getElementById('connectButton');
        const statusDiv = document.getElementById('status');

        function addLine(text, color) {
            const line = document.createElement('div');
            line.style.margin = '5px 0';
            line.style.color = color;
            line.textContent = text;
            messagesDiv.appendChild(line);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function loadChannels() {
            fetch('/channels').then(r => r.json()).then(channels => {
                channelSelect.innerHTML = '';
                channels.forEach(ch => {
                    const option = document.createElement('option');
                    option.value = ch.id;
                    option.textContent = '#' + ch.name;
                    channelSelect.appendChild(option);
                });
            });
        }

        function updateStatus(connected) {
            statusDiv.textContent = connected ? 'Connected' : 'Disconnected';
            statusDiv.className = 'status ' + (connected ? 'connected' : 'disconnected');
            messageInput.disabled = !connected;
            sendButton.disabled = !connected;
            connectButton.textContent = connected ? 'Disconnect' : 'Connect';
        }

        function connect() {
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/ws');
            ws.onopen = () => { addLine('Connected', 'gray'); updateStatus(true); };
            ws.onmessage = event => {
                const frame = JSON.parse(event.data);
                if (frame.type === 'error') {
                    addLine('Error: ' + frame.message, 'red');
                } else {
                    addLine('[' + frame.channelId + '] ' + frame.userName + ': ' + frame.text, 'green');
                }
            };
            ws.onclose = () => { addLine('Connection closed', 'gray'); updateStatus(false); ws = null; };
            ws.onerror = () => { addLine('Connection error', 'red'); updateStatus(false); };
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.close();
            } else {
                connect();
            }
        }

        function sendMessage() {
            if (!ws || ws.readyState !== WebSocket.OPEN) {
                return;
            }
            ws.send(JSON.stringify({
                type: 'message',
                channelId: parseInt(channelSelect.value, 10),
                userName: userInput.value,
                text: messageInput.value
            }));
            messageInput.value = '';
        }

        messageInput.addEventListener('keypress', e => {
            if (e.key === 'Enter') {
                sendMessage();
            }
        });

        loadChannels();
    </script>
</body>
</html>`
