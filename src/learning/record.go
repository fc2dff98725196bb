package learning

import (
	"context"
	"slices"

	"hotel_concierge/src/model"
)

// RecordInteraction learns from one classified utterance: it updates or
// creates the pattern for (intent, input prefix), the behavior counters and
// the guest's preferences, then persists.
func (s *Store) RecordInteraction(ctx context.Context, utterance string, intent model.Intent, feedback model.Feedback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	lang := intent.Language
	if lang == "" {
		lang = s.profile.Behavior.LanguagePreference
	}

	id := patternID(utterance, intent.Primary)
	if p, ok := s.profile.Patterns[id]; ok {
		p.Frequency++
		p.LastUsed = now
		p.Confidence = adjustConfidence(p.Confidence, intent.Confidence, feedback)
		if feedback != model.FeedbackNone {
			p.Feedback = feedback
		}
	} else {
		s.profile.Patterns[id] = &model.LearningPattern{
			ID:         id,
			Pattern:    patternText(utterance),
			Intent:     intent.Primary,
			Confidence: clamp(intent.Confidence),
			Frequency:  1,
			Language:   lang,
			Context:    patternContext(utterance),
			LastUsed:   now,
			Feedback:   feedback,
		}
		if evicted := evict(s.profile.Patterns, s.capacity); len(evicted) > 0 {
			s.log.Debug().Strs("patterns", evicted).Msg("evicted learning patterns")
		}
	}

	behavior := &s.profile.Behavior
	behavior.CommonIntents[string(intent.Primary)]++
	behavior.PreferredTimeOfDay[timeOfDay(now.Hour())]++
	behavior.LanguagePreference = lang

	s.learnPreferences(intent)
	s.memory.TotalInteractions++
	s.memory.LastActive = now
	s.persist(ctx)
}

func (s *Store) learnPreferences(intent model.Intent) {
	prefs := &s.profile.Preferences
	if name, ok := intent.Entities.String(model.EntityName); ok && prefs.Name == "" {
		prefs.Name = name
	}
	if roomType, ok := intent.Entities.String(model.EntityRoomType); ok {
		prefs.RoomPreferences.Type = roomType
	}
	if cuisine, ok := intent.Entities.String(model.EntityCuisine); ok && !slices.Contains(prefs.DiningPreferences.Cuisine, cuisine) {
		prefs.DiningPreferences.Cuisine = append(prefs.DiningPreferences.Cuisine, cuisine)
	}
	if intent.Primary == model.IntentSpa {
		if service, ok := intent.Entities.String(model.EntityService); ok && !slices.Contains(prefs.SpaPreferences.TreatmentTypes, service) {
			prefs.SpaPreferences.TreatmentTypes = append(prefs.SpaPreferences.TreatmentTypes, service)
		}
	}
	if intent.Language != "" {
		prefs.Language = intent.Language
	}
	if intent.Primary != "" && !slices.Contains(prefs.FrequentRequests, string(intent.Primary)) {
		prefs.FrequentRequests = append(prefs.FrequentRequests, string(intent.Primary))
	}
}

// SetCommunicationStyle records how the guest likes to be addressed.
func (s *Store) SetCommunicationStyle(ctx context.Context, style model.CommunicationStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Preferences.CommunicationStyle = style
	s.persist(ctx)
}

// RecordConversation appends one full turn to the FIFO conversation log and
// counts it against its session.
func (s *Store) RecordConversation(ctx context.Context, entry model.ConversationEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory.Conversations = append(s.memory.Conversations, entry)
	if over := len(s.memory.Conversations) - s.conversationLimit; over > 0 {
		s.memory.Conversations = slices.Clone(s.memory.Conversations[over:])
	}

	for i := range s.memory.SessionHistory {
		session := &s.memory.SessionHistory[i]
		if session.SessionID != entry.SessionID {
			continue
		}
		session.Interactions++
		for _, action := range entry.Actions {
			if action.Executed {
				session.CompletedActions = append(session.CompletedActions, action)
			}
		}
	}
	s.memory.LastActive = s.now()
	s.persist(ctx)
}

// BeginSession opens a session history entry unless one with the id exists.
// The oldest entries are dropped past the session limit.
func (s *Store) BeginSession(ctx context.Context, sessionID, route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.memory.SessionHistory {
		if session.SessionID == sessionID {
			return
		}
	}
	s.memory.SessionHistory = append(s.memory.SessionHistory, model.SessionEntry{
		SessionID:        sessionID,
		StartTime:        s.now(),
		Route:            route,
		CompletedActions: []model.AgentAction{},
	})
	if over := len(s.memory.SessionHistory) - s.sessionLimit; over > 0 {
		s.memory.SessionHistory = slices.Clone(s.memory.SessionHistory[over:])
	}
	s.persist(ctx)
}

// EndSession stamps the session's end time.
func (s *Store) EndSession(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.memory.SessionHistory {
		if s.memory.SessionHistory[i].SessionID == sessionID && s.memory.SessionHistory[i].EndTime == nil {
			end := s.now()
			s.memory.SessionHistory[i].EndTime = &end
		}
	}
	s.persist(ctx)
}

// RecordBooking appends a finished booking to the history. A completed room
// booking marks the guest as a returning one.
func (s *Store) RecordBooking(ctx context.Context, session *model.BookingSession) {
	if session == nil || !session.Terminal() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := &s.profile.Preferences
	prefs.BookingHistory = append(prefs.BookingHistory, model.BookingRecord{
		Type:    session.Type,
		Date:    s.now(),
		Details: session.Data.Clone(),
		Status:  session.Status,
	})
	if session.Type == model.BookingRoom && session.Status == model.StatusCompleted {
		prefs.PreviousStay = true
		if roomType, ok := session.Data.String(model.EntityRoomType); ok {
			prefs.RoomPreferences.Type = roomType
		}
	}
	s.persist(ctx)
}

// HasRoomBooking reports whether the guest ever completed a room booking.
func (s *Store) HasRoomBooking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.profile.Preferences.BookingHistory {
		if record.Type == model.BookingRoom && record.Status == model.StatusCompleted {
			return true
		}
	}
	return false
}
