package guilded

import (
	"sync"
)

// state is the client's in-memory object cache. It is maintained by event
// dispatch and by REST responses, so lookups reflect the most recent data
// the client has seen. Objects returned from it are shared; callers
// should treat them as read-only.
type state struct {
	mu sync.RWMutex

	maxMessages  int
	messages     map[string]*Message
	messageOrder []string

	users    map[string]*User
	servers  map[string]*Server
	channels map[string]*Channel
	members  map[string]map[string]*Member
}

func newState(maxMessages int) *state {
	return &state{
		maxMessages: maxMessages,
		messages:    map[string]*Message{},
		users:       map[string]*User{},
		servers:     map[string]*Server{},
		channels:    map[string]*Channel{},
		members:     map[string]map[string]*Member{},
	}
}

func (s *state) putMessage(m *Message) {
	if s.maxMessages <= 0 || m.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[m.ID]; !ok {
		s.messageOrder = append(s.messageOrder, m.ID)
		for len(s.messageOrder) > s.maxMessages {
			delete(s.messages, s.messageOrder[0])
			s.messageOrder = s.messageOrder[1:]
		}
	}
	s.messages[m.ID] = m
}

func (s *state) message(id string) *Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.messages[id]
}

func (s *state) removeMessage(id string) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.messages[id]
	if m != nil {
		delete(s.messages, id)
		for i, mid := range s.messageOrder {
			if mid == id {
				s.messageOrder = append(s.messageOrder[:i], s.messageOrder[i+1:]...)
				break
			}
		}
	}
	return m
}

func (s *state) messageList() []*Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]*Message, 0, len(s.messageOrder))
	for _, id := range s.messageOrder {
		ret = append(ret, s.messages[id])
	}
	return ret
}

func (s *state) putUser(u *User) {
	if u.ID == "" {
		return
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

func (s *state) user(id string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[id]
}

func (s *state) userList() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		ret = append(ret, u)
	}
	return ret
}

func (s *state) putServer(server *Server) {
	if server.ID == "" {
		return
	}
	s.mu.Lock()
	s.servers[server.ID] = server
	s.mu.Unlock()
}

func (s *state) server(id string) *Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.servers[id]
}

func (s *state) serverList() []*Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]*Server, 0, len(s.servers))
	for _, server := range s.servers {
		ret = append(ret, server)
	}
	return ret
}

func (s *state) putChannel(ch *Channel) {
	if ch.ID == "" {
		return
	}
	s.mu.Lock()
	s.channels[ch.ID] = ch
	s.mu.Unlock()
}

func (s *state) channel(id string) *Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channels[id]
}

func (s *state) removeChannel(id string) *Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.channels[id]
	delete(s.channels, id)
	return ch
}

func (s *state) channelList() []*Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]*Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		ret = append(ret, ch)
	}
	return ret
}

func (s *state) putMember(m *Member) {
	if m.ServerID == "" || m.User.ID == "" {
		return
	}
	s.mu.Lock()
	if s.members[m.ServerID] == nil {
		s.members[m.ServerID] = map[string]*Member{}
	}
	s.members[m.ServerID][m.User.ID] = m
	s.mu.Unlock()
}

func (s *state) member(serverID, userID string) *Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[serverID][userID]
}

func (s *state) removeMember(serverID, userID string) *Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.members[serverID][userID]
	delete(s.members[serverID], userID)
	return m
}

func (s *state) memberList(serverID string) []*Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]*Member, 0, len(s.members[serverID]))
	for _, m := range s.members[serverID] {
		ret = append(ret, m)
	}
	return ret
}
