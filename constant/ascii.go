package constant

// AsciiArtLogo is the application's ASCII art banner.
const AsciiArtLogo = `     _    _                            
 ___| | _(_)_ __  ___ _   _ _ __   ___ 
/ __| |/ / | '_ \/ __| | | | '_ \ / __|
\__ \   <| | |_) \__ \ |_| | | | | (__ 
|___/_|\_\_| .__/|___/\__, |_| |_|\___|
           |_|        |___/            `
