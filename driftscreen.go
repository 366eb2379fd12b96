package driftscreen

var Version = "0.3.1"

var DefaultConfig = `# driftscreen configuration
#
# Directory scanned for images (png, jpg, gif, bmp, webp).
wallpapers = "~/Pictures/wallpapers"

# Shuffle the image list on startup and on load.
shuffle = true

# Seconds an image is shown before the next transition starts.
delay = 300

# Transition effect: crossfade, slide, wipe, blockflip, blockspin, blinds,
# diffuse, peel, warp, raindrops, crumble, particle, or "random".
transition = "random"

# Transition length in seconds.
transition_duration = 2.0

# Easing applied to transition progress: linear, ease-in, ease-out, ease-in-out.
easing = "ease-in-out"

# How images are scaled to the screen: center, stretched, horizontal, vertical.
scale_mode = "center"

# Upper bound on the render frame rate. The effective rate also adapts to
# the display refresh rate and idles down between transitions.
framerate_limit = 60

# Seconds without an active transition before the render timer idles down.
idle_timeout = 5

# Force the CPU compositing path even if shaders are available.
force_software = false

# Exit when a key is pressed or the mouse moves.
exit_on_input = true

# Enable debug logging.
debug = false
`
