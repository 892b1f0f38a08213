package services

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"champlink-platform/models"
)

// ContentService serves the community content API: tournaments, news,
// friends, challenges, direct messages and user profiles. One endpoint,
// multiplexed on the resource parameter.
type ContentService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewContentService(db *gorm.DB, log *zap.Logger) *ContentService {
	return &ContentService{DB: db, Log: log}
}

// Get routes read requests by ?resource=.
func (s *ContentService) Get(c *fiber.Ctx) error {
	switch c.Query("resource") {
	case "tournaments":
		return s.listTournaments(c)
	case "news":
		return s.listNews(c)
	case "friends":
		return s.listFriends(c)
	case "friend_requests":
		return s.listFriendRequests(c)
	case "challenges":
		return s.listChallenges(c)
	case "chat":
		return s.chatHistory(c)
	case "user":
		return s.userProfile(c)
	case "user_search":
		return s.searchUsers(c)
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Unknown resource"})
	}
}

type contentRequest struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`

	UserID   uint   `json:"userId"`
	TargetID uint   `json:"targetId"`

	Name            string `json:"name"`
	PrizePool       int    `json:"prizePool"`
	MaxParticipants int    `json:"maxParticipants"`
	TournamentID    uint   `json:"tournamentId"`

	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`

	GameMode    string `json:"gameMode"`
	Stake       int    `json:"stake"`
	ChallengeID uint   `json:"challengeId"`

	Message string `json:"message"`
}

// Post routes mutations by resource and action.
func (s *ContentService) Post(c *fiber.Ctx) error {
	var req contentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	switch req.Resource {
	case "tournaments":
		switch req.Action {
		case "create":
			return s.createTournament(c, req)
		case "register":
			return s.registerTournament(c, req)
		}
	case "news":
		if req.Action == "create" {
			return s.createNews(c, req)
		}
	case "friends":
		switch req.Action {
		case "add":
			return s.addFriend(c, req)
		case "accept":
			return s.respondFriend(c, req, models.FriendAccepted)
		case "reject":
			return s.rejectFriend(c, req)
		}
	case "challenges":
		switch req.Action {
		case "create":
			return s.createChallenge(c, req)
		case "accept":
			return s.acceptChallenge(c, req)
		case "cancel":
			return s.cancelChallenge(c, req)
		}
	case "chat":
		if req.Action == "send" {
			return s.sendMessage(c, req)
		}
	}
	return c.Status(400).JSON(fiber.Map{"error": "Unknown resource or action"})
}

// --- tournaments ---

func (s *ContentService) listTournaments(c *fiber.Ctx) error {
	var tournaments []models.Tournament
	query := s.DB.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&tournaments).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	out := make([]fiber.Map, 0, len(tournaments))
	for _, t := range tournaments {
		var participants int64
		if err := s.DB.Model(&models.TournamentParticipant{}).
			Where("tournament_id = ?", t.ID).Count(&participants).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "database error"})
		}
		out = append(out, fiber.Map{
			"id":               t.ID,
			"name":             t.Name,
			"slug":             t.Slug,
			"status":           t.Status,
			"prize_pool":       t.PrizePool,
			"max_participants": t.MaxParticipants,
			"participants":     participants,
			"start_date":       t.StartDate,
			"format":           t.Format,
		})
	}
	return c.JSON(fiber.Map{"tournaments": out})
}

func (s *ContentService) createTournament(c *fiber.Ctx, req contentRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Tournament name is required"})
	}

	tournament := models.Tournament{
		Name:            name,
		Slug:            slug.Make(name),
		Status:          models.TournamentUpcoming,
		PrizePool:       req.PrizePool,
		MaxParticipants: req.MaxParticipants,
	}
	if tournament.MaxParticipants <= 0 {
		tournament.MaxParticipants = 16
	}

	if err := s.DB.Create(&tournament).Error; err != nil {
		if isDuplicateErr(err) {
			return c.Status(409).JSON(fiber.Map{"error": "Tournament already exists"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to create tournament"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Tournament created", "tournament": tournament})
}

func (s *ContentService) registerTournament(c *fiber.Ctx, req contentRequest) error {
	if req.UserID == 0 || req.TournamentID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "User ID and tournament ID are required"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, req.TournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if tournament.Status != models.TournamentUpcoming {
		return c.Status(400).JSON(fiber.Map{"error": "Registration is closed"})
	}

	var count int64
	if err := s.DB.Model(&models.TournamentParticipant{}).
		Where("tournament_id = ?", tournament.ID).Count(&count).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if count >= int64(tournament.MaxParticipants) {
		return c.Status(409).JSON(fiber.Map{"error": "Tournament is full"})
	}

	participant := models.TournamentParticipant{
		TournamentID: tournament.ID,
		UserID:       req.UserID,
	}
	if err := s.DB.Create(&participant).Error; err != nil {
		if isDuplicateErr(err) {
			return c.Status(409).JSON(fiber.Map{"error": "Already registered"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to register"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Registered for tournament"})
}

// --- news ---

func (s *ContentService) listNews(c *fiber.Ctx) error {
	var items []models.NewsItem
	if err := s.DB.Order("created_at DESC").Limit(50).Find(&items).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(fiber.Map{"news": items})
}

func (s *ContentService) createNews(c *fiber.Ctx, req contentRequest) error {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Title and content are required"})
	}

	item := models.NewsItem{
		Title:    strings.TrimSpace(req.Title),
		Category: req.Category,
		Content:  req.Content,
	}
	if item.Category == "" {
		item.Category = "update"
	}
	if req.UserID > 0 {
		item.AuthorID = &req.UserID
	}
	if err := s.DB.Create(&item).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create news item"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "News item created", "news": item})
}

// --- friends ---

func (s *ContentService) listFriends(c *fiber.Ctx) error {
	userID := queryID(c, "user_id")
	if userID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "user_id is required"})
	}

	var links []models.Friend
	if err := s.DB.Where("status = ? AND (user_id = ? OR friend_id = ?)",
		models.FriendAccepted, userID, userID).Find(&links).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	ids := make([]uint, 0, len(links))
	for _, link := range links {
		if link.UserID == userID {
			ids = append(ids, link.FriendID)
		} else {
			ids = append(ids, link.UserID)
		}
	}

	friends := make([]fiber.Map, 0, len(ids))
	if len(ids) > 0 {
		var users []models.User
		if err := s.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "database error"})
		}
		for _, u := range users {
			friends = append(friends, profileSummary(&u))
		}
	}
	return c.JSON(fiber.Map{"friends": friends})
}

func (s *ContentService) listFriendRequests(c *fiber.Ctx) error {
	userID := queryID(c, "user_id")
	if userID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "user_id is required"})
	}

	var links []models.Friend
	if err := s.DB.Where("friend_id = ? AND status = ?",
		userID, models.FriendPending).Find(&links).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	requests := make([]fiber.Map, 0, len(links))
	for _, link := range links {
		var sender models.User
		if err := s.DB.First(&sender, link.UserID).Error; err != nil {
			continue
		}
		requests = append(requests, fiber.Map{
			"requestId": link.ID,
			"from":      profileSummary(&sender),
			"sentAt":    link.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"requests": requests})
}

func (s *ContentService) addFriend(c *fiber.Ctx, req contentRequest) error {
	if req.UserID == 0 || req.TargetID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "User ID and target ID are required"})
	}
	if req.UserID == req.TargetID {
		return c.Status(400).JSON(fiber.Map{"error": "Cannot add yourself"})
	}

	var existing models.Friend
	err := s.DB.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		req.UserID, req.TargetID, req.TargetID, req.UserID).First(&existing).Error
	if err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "Friend request already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	link := models.Friend{UserID: req.UserID, FriendID: req.TargetID, Status: models.FriendPending}
	if err := s.DB.Create(&link).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to send friend request"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Friend request sent"})
}

func (s *ContentService) respondFriend(c *fiber.Ctx, req contentRequest, status string) error {
	if req.UserID == 0 || req.TargetID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "User ID and target ID are required"})
	}

	// Only the recipient of a pending request may respond.
	result := s.DB.Model(&models.Friend{}).
		Where("user_id = ? AND friend_id = ? AND status = ?",
			req.TargetID, req.UserID, models.FriendPending).
		Update("status", status)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Friend request not found"})
	}
	return c.JSON(fiber.Map{"message": "Friend request accepted"})
}

func (s *ContentService) rejectFriend(c *fiber.Ctx, req contentRequest) error {
	if req.UserID == 0 || req.TargetID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "User ID and target ID are required"})
	}

	result := s.DB.Where("user_id = ? AND friend_id = ? AND status = ?",
		req.TargetID, req.UserID, models.FriendPending).
		Delete(&models.Friend{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Friend request not found"})
	}
	return c.JSON(fiber.Map{"message": "Friend request rejected"})
}

// --- challenges ---

func (s *ContentService) listChallenges(c *fiber.Ctx) error {
	status := c.Query("status", models.ChallengeOpen)

	var challenges []models.Challenge
	if err := s.DB.Preload("Creator").Where("status = ?", status).
		Order("created_at DESC").Limit(50).Find(&challenges).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	out := make([]fiber.Map, 0, len(challenges))
	for _, ch := range challenges {
		entry := fiber.Map{
			"id":         ch.ID,
			"game_mode":  ch.GameMode,
			"stake":      ch.Stake,
			"status":     ch.Status,
			"created_at": ch.CreatedAt,
		}
		if ch.Creator != nil {
			entry["creator"] = profileSummary(ch.Creator)
		}
		out = append(out, entry)
	}
	return c.JSON(fiber.Map{"challenges": out})
}

func (s *ContentService) createChallenge(c *fiber.Ctx, req contentRequest) error {
	if req.UserID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "User ID is required"})
	}
	if req.Stake < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Stake cannot be negative"})
	}

	var creator models.User
	if err := s.DB.First(&creator, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if req.Stake > creator.Points {
		return c.Status(400).JSON(fiber.Map{"error": "Stake exceeds available points"})
	}

	gameMode := req.GameMode
	if gameMode == "" {
		gameMode = "classic"
	}
	challenge := models.Challenge{
		CreatorID: req.UserID,
		GameMode:  gameMode,
		Stake:     req.Stake,
		Status:    models.ChallengeOpen,
	}
	if err := s.DB.Create(&challenge).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create challenge"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Challenge created", "challenge": challenge})
}

func (s *ContentService) acceptChallenge(c *fiber.Ctx, req contentRequest) error {
	if req.UserID == 0 || req.ChallengeID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "User ID and challenge ID are required"})
	}

	var challenge models.Challenge
	if err := s.DB.First(&challenge, req.ChallengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Challenge not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if challenge.Status != models.ChallengeOpen {
		return c.Status(409).JSON(fiber.Map{"error": "Challenge is not open"})
	}
	if challenge.CreatorID == req.UserID {
		return c.Status(400).JSON(fiber.Map{"error": "Cannot accept your own challenge"})
	}

	var opponent models.User
	if err := s.DB.First(&opponent, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if challenge.Stake > opponent.Points {
		return c.Status(400).JSON(fiber.Map{"error": "Stake exceeds available points"})
	}

	result := s.DB.Model(&models.Challenge{}).
		Where("id = ? AND status = ?", challenge.ID, models.ChallengeOpen).
		Updates(map[string]any{
			"status":      models.ChallengeAccepted,
			"opponent_id": req.UserID,
		})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to accept challenge"})
	}
	if result.RowsAffected == 0 {
		return c.Status(409).JSON(fiber.Map{"error": "Challenge is not open"})
	}
	return c.JSON(fiber.Map{"message": "Challenge accepted"})
}

func (s *ContentService) cancelChallenge(c *fiber.Ctx, req contentRequest) error {
	if req.UserID == 0 || req.ChallengeID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "User ID and challenge ID are required"})
	}

	result := s.DB.Model(&models.Challenge{}).
		Where("id = ? AND creator_id = ? AND status = ?",
			req.ChallengeID, req.UserID, models.ChallengeOpen).
		Update("status", models.ChallengeCancelled)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Challenge not found"})
	}
	return c.JSON(fiber.Map{"message": "Challenge cancelled"})
}

// --- chat ---

func (s *ContentService) chatHistory(c *fiber.Ctx) error {
	userID := queryID(c, "user_id")
	withID := queryID(c, "with")
	if userID == 0 || withID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "user_id and with are required"})
	}

	var messages []models.Message
	if err := s.DB.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userID, withID, withID, userID).
		Order("created_at ASC").Limit(100).Find(&messages).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(fiber.Map{"messages": messages})
}

func (s *ContentService) sendMessage(c *fiber.Ctx, req contentRequest) error {
	if req.UserID == 0 || req.TargetID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "User ID and target ID are required"})
	}
	body := strings.TrimSpace(req.Message)
	if body == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Message cannot be empty"})
	}
	if len(body) > 1000 {
		return c.Status(400).JSON(fiber.Map{"error": "Message is too long"})
	}

	msg := models.Message{SenderID: req.UserID, ReceiverID: req.TargetID, Body: body}
	if err := s.DB.Create(&msg).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to send message"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Message sent", "data": msg})
}

// --- users ---

func (s *ContentService) userProfile(c *fiber.Ctx) error {
	username := strings.ToLower(strings.TrimSpace(c.Query("username")))
	if username == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username is required"})
	}

	var user models.User
	err := s.DB.Where("username = ? AND is_active = ?", username, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	profile := profileSummary(&user)
	profile["winRate"] = user.WinRate()
	profile["totalMatches"] = user.Wins + user.Losses
	profile["memberSince"] = user.CreatedAt
	return c.JSON(fiber.Map{"user": profile})
}

func (s *ContentService) searchUsers(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(400).JSON(fiber.Map{"error": "q is required"})
	}

	var users []models.User
	if err := s.DB.Where("username ILIKE ? AND is_active = ?", "%"+query+"%", true).
		Limit(20).Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	out := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		out = append(out, profileSummary(&u))
	}
	return c.JSON(fiber.Map{"users": out})
}

// queryID reads a positive integer id query parameter, 0 when absent or
// invalid.
func queryID(c *fiber.Ctx, name string) uint {
	id := c.QueryInt(name)
	if id <= 0 {
		return 0
	}
	return uint(id)
}

func profileSummary(u *models.User) fiber.Map {
	return fiber.Map{
		"id":          u.ID,
		"username":    u.Username,
		"displayName": u.DisplayName,
		"avatar":      u.AvatarURL,
		"level":       u.Level,
		"points":      u.Points,
		"wins":        u.Wins,
		"losses":      u.Losses,
	}
}

// isDuplicateErr reports whether the database rejected an insert on a
// unique constraint.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}
