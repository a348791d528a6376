package services

import "herotime/internal/models/response_models"

// DefaultHeroPrompt is used when a generation request carries no prompt of its own.
const DefaultHeroPrompt = `
Create a photorealistic, funny, and cinematic superhero-style composite using all provided images.
Each image belongs to a specific body region group (head, body, hands, legs).
Use these logical groupings to decide placement, not the filenames.

REQUIRED ELEMENTS:
- Face: Use the provided face image to preserve the person's identity (can enhance expression for humor).
- Head Group: Place all images from this group naturally around or on the head (e.g., hats, helmets, crowns, goggles, glasses, etc.).
- Body Group: Place all images from this group logically on the torso (e.g., belts, shirts, armor, jackets, vests, accessories).
- Left Hand Group: Attach items from this group to or near the left hand (e.g., objects being held, props, weapons, funny gadgets).
- Right Hand Group: Attach items from this group to or near the right hand (same logic as left hand).
- Left Leg Group: Place items from this group on or near the left leg or foot (e.g., shoes, boots, pants, armor).
- Right Leg Group: Place items from this group on or near the right leg or foot.
- Use the hero body base image as the main figure.

CREATIVE FREEDOM:
- Choose any funny, exaggerated superhero or fantasy pose.
- Background: cinematic, dramatic, or humorous (chaotic scene, fantasy world, comic explosion, etc.).
- Enhance composition with dramatic lighting, wind, motion blur, and vivid colors.
- Maintain a cohesive, seamless photorealistic look.

TECHNICAL QUALITY:
- Ultra high quality, photorealistic rendering.
- Perfect blending between all image layers.
- Sharp details, vibrant tones, 3D cinematic depth.

GOAL:
Make a creative, funny superhero image that clearly shows the user's face and logically arranges all items by their body region group.

negative_prompt: "distorted face, mismatched props, misplaced body parts, bad blending, boring background, nudity, text overlays, offensive content"
`

var promptTemplates = []response_models.PromptTemplate{
	{ID: "custom", Name: "Custom Prompt", Emoji: "✍️", Prompt: ""},
	{ID: "hyper-realistic", Name: "Hyper-realistic", Emoji: "✨",
		Prompt: "Generate a hyper-realistic, fashion-style photo with strong, direct flash lighting, grainy texture, and a cool, confident pose."},
	{ID: "superhero", Name: "Epic Superhero", Emoji: "🦸",
		Prompt: "Create a photorealistic, cinematic superhero composite. Use the face image to preserve identity. Place head accessories naturally on head, body items on torso, hand props in hands, and leg items on feet. Use dramatic lighting, epic background with explosions or fantasy setting, dynamic pose, motion blur, and vivid colors. Ultra high quality, perfect blending, sharp details."},
	{ID: "action-hero", Name: "Action Hero", Emoji: "💥",
		Prompt: "Transform into an action movie hero with explosive background, dramatic lighting, intense pose, and cinematic effects. Make it look like a blockbuster movie poster with perfect face preservation and seamless prop integration."},
	{ID: "fantasy-warrior", Name: "Fantasy Warrior", Emoji: "⚔️",
		Prompt: "Create an epic fantasy warrior scene with medieval or magical setting. Add mystical lighting, fantasy landscape background, heroic battle-ready pose. Integrate all props naturally - weapons in hands, armor on body, helmet on head. Photorealistic with fantasy art style."},
	{ID: "space-explorer", Name: "Space Explorer", Emoji: "🚀",
		Prompt: "Transform into a space explorer or astronaut. Futuristic sci-fi background with stars, planets, or space station. High-tech equipment and props integrated naturally. Cinematic lighting with lens flares, dramatic pose, photorealistic quality."},
	{ID: "retro-hero", Name: "Retro Hero", Emoji: "📺",
		Prompt: "Create a retro 80s/90s style hero image with vintage aesthetics. Add VHS effects, nostalgic color grading, classic action pose. Integrate props with retro styling. Make it look like a classic action figure or vintage poster."},
	{ID: "anime-style", Name: "Anime Style", Emoji: "🎌",
		Prompt: "Transform into anime/manga style character while preserving facial features. Dynamic anime pose, vibrant colors, dramatic background with speed lines or energy effects. Integrate props in anime aesthetic. Semi-realistic anime art style."},
	{ID: "comic-book", Name: "Comic Book", Emoji: "💢",
		Prompt: "Create a comic book style hero image with bold colors, dramatic shadows, and dynamic pose. Add comic-style background elements, action lines, and dramatic lighting. Integrate all props naturally while maintaining comic art aesthetic."},
	{ID: "cyberpunk", Name: "Cyberpunk", Emoji: "🌃",
		Prompt: "Transform into a cyberpunk character with neon-lit futuristic city background. Add cybernetic enhancements, neon lighting, rain effects, and high-tech props. Dramatic pose with cinematic depth, vibrant neon colors."},
	{ID: "steampunk", Name: "Steampunk", Emoji: "⚙️",
		Prompt: "Create a steampunk adventurer with Victorian-era industrial aesthetic. Brass and copper tones, steam effects, mechanical props, vintage clothing. Dramatic lighting with warm tones, intricate details, photorealistic quality."},
	{ID: "pirate-captain", Name: "Pirate Captain", Emoji: "🏴‍☠️",
		Prompt: "Transform into a legendary pirate captain on the high seas. Dramatic ocean background with ship, treasure, or island. Integrate pirate props naturally - sword in hand, hat on head, boots on feet. Cinematic lighting with dramatic sky."},
	{ID: "medieval-knight", Name: "Medieval Knight", Emoji: "🛡️",
		Prompt: "Create a medieval knight in shining armor. Castle or battlefield background, dramatic medieval setting. Integrate armor, weapons, and medieval props naturally. Heroic pose with cinematic lighting, photorealistic quality."},
	{ID: "wild-west", Name: "Wild West", Emoji: "🤠",
		Prompt: "Transform into a Wild West gunslinger or cowboy. Desert landscape or old western town background. Integrate western props - hat, boots, weapons. Dramatic sunset lighting, dusty atmosphere, cinematic western movie style."},
	{ID: "samurai", Name: "Samurai Warrior", Emoji: "🗾",
		Prompt: "Create a legendary samurai warrior in traditional Japanese setting. Cherry blossoms, temple, or battlefield background. Integrate katana, armor, and traditional props naturally. Dramatic lighting with Japanese aesthetic, photorealistic quality."},
	{ID: "rockstar", Name: "Rockstar", Emoji: "🎸",
		Prompt: "Transform into a rockstar performer on stage. Concert venue background with dramatic stage lighting, crowd, pyrotechnics. Integrate music props and accessories naturally. Dynamic performance pose, vibrant colors, photorealistic quality."},
	{ID: "athlete", Name: "Super Athlete", Emoji: "🏆",
		Prompt: "Create a super athlete in action. Stadium or sports arena background with dramatic lighting and crowd. Integrate sports equipment and props naturally. Dynamic athletic pose with motion blur, photorealistic quality."},
	{ID: "movie-poster", Name: "Movie Poster", Emoji: "🎬",
		Prompt: "Transform into a movie poster hero with cinematic composition. Dramatic lighting, epic background, professional poster layout. Integrate all props naturally. Make it look like a blockbuster movie poster with perfect composition."},
}

type PromptServiceInterface interface {
	ListPromptTemplates() response_models.PromptTemplatesResponse
	// ResolvePrompt returns prompt, or the default hero prompt when it is blank.
	ResolvePrompt(prompt string) string
}

func NewPromptService() PromptServiceInterface {
	return &PromptService{}
}

type PromptService struct{}

func (p *PromptService) ListPromptTemplates() response_models.PromptTemplatesResponse {
	templates := make([]response_models.PromptTemplate, len(promptTemplates))
	copy(templates, promptTemplates)
	return response_models.PromptTemplatesResponse{
		Templates:     templates,
		DefaultPrompt: DefaultHeroPrompt,
	}
}

func (p *PromptService) ResolvePrompt(prompt string) string {
	if prompt == "" {
		return DefaultHeroPrompt
	}
	return prompt
}
